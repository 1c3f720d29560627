// This file contains the UserManager implementation, which is responsible for interacting with the MongoDB users collection.
// The UserManager struct contains a pointer to the overridedb.users MongoDB collection and a logger. It provides methods to set,
// get and update user data in the database. Interaction with users is almost always by ID, as the ID will (almost always) be unique.
// Users own scenes: scene access checks search the user's scene list.

package user

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
)

type UserManager struct {
	collection *mongo.Collection
	logger     *log.Logger
}

// NewUserManager creates a new instance of UserManager.
func NewUserManager(client *mongo.Client, logger *log.Logger, unittest bool) *UserManager {
	db := client.Database("overridedb")
	return &UserManager{
		collection: db.Collection("users"),
		logger:     logger,
	}
}

// SetUser updates or inserts a user document in the database.
func (um *UserManager) SetUser(ctx context.Context, usr *User) error {
	_, err := um.collection.UpdateOne(
		ctx,
		bson.M{"_id": usr.ID},
		bson.M{"$set": usr},
		options.Update().SetUpsert(true),
	)
	return err
}

// UpdateUser updates an existing user document in the database.
func (um *UserManager) UpdateUser(ctx context.Context, usr *User) error {
	result, err := um.collection.UpdateOne(
		ctx,
		bson.M{"_id": usr.ID},
		bson.M{"$set": usr},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GenerateUser generates a new user document with the given username and password,
// and inserts it into the database. Returns ErrUsernameTaken if the username is in use.
func (um *UserManager) GenerateUser(ctx context.Context, username, password string) (*User, error) {
	_, err := um.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	} else {
		return nil, ErrUsernameTaken
	}

	usr := &User{
		ID:       primitive.NewObjectID(),
		Username: username,
	}

	if err := usr.SetPassword(password); err != nil {
		return nil, err
	}

	if err := um.SetUser(ctx, usr); err != nil {
		return nil, err
	}

	return usr, nil
}

// GetUserByID retrieves a user from the database based on the given ID.
func (um *UserManager) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*User, error) {
	var usr User
	err := um.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&usr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &usr, nil
}

// GetUserByUsername retrieves a user from the database based on the given username.
func (um *UserManager) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var usr User
	err := um.collection.FindOne(ctx, bson.M{"username": username}).Decode(&usr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &usr, nil
}

// UserHasSceneAccess checks if a user has access to a scene by searching for the scene ID in the user's scene list.
func (um *UserManager) UserHasSceneAccess(ctx context.Context, userID, sceneID primitive.ObjectID) (bool, error) {
	usr, err := um.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range usr.SceneIDs {
		if id == sceneID {
			return true, nil
		}
	}
	return false, nil
}
