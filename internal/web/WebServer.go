package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/golang-jwt/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SceneForge/GoMaterialOverride/internal/common"
	"github.com/SceneForge/GoMaterialOverride/internal/log"
	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
	"github.com/SceneForge/GoMaterialOverride/internal/models/user"
	"github.com/SceneForge/GoMaterialOverride/internal/override"
	"github.com/SceneForge/GoMaterialOverride/internal/services"
)

type WebServer struct {
	jwtSecret       string
	app             *fiber.App
	overrideService *services.OverrideService
	logger          *log.Logger
}

func NewWebServer(jwtSecret string, overrideService *services.OverrideService, logger *log.Logger) *WebServer {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Authorization, Content-Type",
	}))

	return &WebServer{
		jwtSecret:       jwtSecret,
		app:             app,
		overrideService: overrideService,
		logger:          logger,
	}
}

func (s *WebServer) Run(ip string, port int) error {
	s.SetupRoutes()
	return s.app.Listen(ip + ":" + strconv.Itoa(port))
}

func (s *WebServer) SetupRoutes() {
	s.app.Post("/login", s.loginUser)
	s.app.Post("/register", s.registerUser)
	s.app.Get("/routes", s.getRoutes)
	s.app.Get("/health", s.healthCheck)
	s.app.Get("/overrides", s.tokenRequired(s.listActiveOverrides))
	s.app.Post("/scene", s.tokenRequired(s.createScene))
	s.app.Get("/scene/:scene_id", s.tokenRequired(s.getScene))
	s.app.Put("/scene/:scene_id/settings", s.tokenRequired(s.updateSettings))
	s.app.Post("/scene/:scene_id/exclude", s.tokenRequired(s.addExcludeMaterial))
	s.app.Delete("/scene/:scene_id/exclude/:material", s.tokenRequired(s.removeExcludeMaterial))
	s.app.Get("/scene/:scene_id/override", s.tokenRequired(s.getOverrideStatus))
	s.app.Post("/scene/:scene_id/override", s.tokenRequired(s.applyOverride))
	s.app.Post("/scene/:scene_id/override/cancel", s.tokenRequired(s.cancelOverride))
	s.app.Post("/scene/:scene_id/object/:object_id/clean", s.tokenRequired(s.cleanObjectSlots))
	s.app.Post("/scene/:scene_id/generic-tag", s.tokenRequired(s.tagGenericMaterial))
}

func (s *WebServer) tokenRequired(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			s.logger.Info("Missing Authorization header")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing Authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.logger.Info("Invalid Authorization header format. Expected: `Bearer <token>`")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Authorization header format. Expected: `Bearer <token>`"})
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.jwtSecret), nil
		})

		if err != nil || !token.Valid {
			s.logger.Info("Invalid token")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			s.logger.Info("Invalid token claims")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}
		userID, ok := claims["sub"].(string)
		if !ok {
			s.logger.Info("Invalid user ID in token")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
		}

		c.Locals("userID", userID)
		return handler(c)
	}
}

// statusForError maps service and core errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, override.ErrInvalidOverrideMaterial):
		return http.StatusBadRequest
	case errors.Is(err, override.ErrObjectOverridden):
		return http.StatusConflict
	case errors.Is(err, scene.ErrSceneNotFound), errors.Is(err, scene.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrUserNoAccess):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// requestIDs extracts the authenticated user ID and the scene ID from the
// request, and verifies the user has access to the scene.
func (s *WebServer) requestIDs(c *fiber.Ctx, sceneIDHex string) (primitive.ObjectID, primitive.ObjectID, error) {
	userID, err := primitive.ObjectIDFromHex(c.Locals("userID").(string))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errors.New("invalid user ID")
	}

	sceneID, err := primitive.ObjectIDFromHex(sceneIDHex)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errors.New("invalid scene ID")
	}

	if err := s.overrideService.VerifyUserAccess(context.TODO(), userID, sceneID); err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}

	return userID, sceneID, nil
}

func (s *WebServer) loginUser(c *fiber.Ctx) error {
	s.logger.Info("Login request received")

	var req common.LoginRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Login request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := s.overrideService.LoginUser(context.TODO(), req.Username, req.Password)
	if err != nil {
		s.logger.Info("User login failed:", err.Error())
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.logger.Info("Failed to generate token")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}
	s.logger.Infof("JWT token generated, userID %s", userID)

	return c.Status(http.StatusOK).JSON(fiber.Map{"jwtToken": tokenString})
}

func (s *WebServer) registerUser(c *fiber.Ctx) error {
	s.logger.Info("Register request received")

	var req common.RegisterRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Register request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.overrideService.RegisterUser(context.TODO(), req.Username, req.Password); err != nil {
		s.logger.Info("User registration failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.logger.Info("User registered successfully")
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "User created"})
}

func (s *WebServer) createScene(c *fiber.Ctx) error {
	s.logger.Info("Create scene request received")

	var req common.CreateSceneRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Create scene request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := primitive.ObjectIDFromHex(c.Locals("userID").(string))
	if err != nil {
		s.logger.Info("Invalid user ID:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	sceneID, err := s.overrideService.CreateScene(context.TODO(), userID, &req)
	if err != nil {
		s.logger.Info("Scene creation failed:", err.Error())
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	s.logger.Infof("Scene %s created", sceneID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": sceneID})
}

func (s *WebServer) getScene(c *fiber.Ctx) error {
	var req common.GetSceneRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	scn, err := s.overrideService.GetScene(context.TODO(), sceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusOK).JSON(scn)
}

func (s *WebServer) updateSettings(c *fiber.Ctx) error {
	s.logger.Info("Update override settings request received")

	var req common.UpdateSettingsRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Update settings request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.overrideService.SetOverrideMaterial(context.TODO(), sceneID, req.OverrideMaterial); err != nil {
		s.logger.Info("Failed to set override material:", err.Error())
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Override material set"})
}

func (s *WebServer) addExcludeMaterial(c *fiber.Ctx) error {
	s.logger.Info("Add exclude material request received")

	var req common.AddExcludeMaterialRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Add exclude request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.overrideService.AddExcludeMaterial(context.TODO(), sceneID, req.Material); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Material added to exclude list"})
}

func (s *WebServer) removeExcludeMaterial(c *fiber.Ctx) error {
	s.logger.Info("Remove exclude material request received")

	var req common.RemoveExcludeMaterialRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Remove exclude request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.overrideService.RemoveExcludeMaterial(context.TODO(), sceneID, req.Material); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Material removed from exclude list"})
}

func (s *WebServer) applyOverride(c *fiber.Ctx) error {
	s.logger.Info("Apply override request received")

	var req common.ApplyOverrideRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Apply override request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	applied, err := s.overrideService.ApplyOverride(context.TODO(), sceneID)
	if err != nil {
		s.logger.Info("Apply override failed:", err.Error())
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	s.logger.Infof("Override applied to %d slots on scene %s", applied, req.SceneID)
	return c.Status(http.StatusOK).JSON(fiber.Map{"applied_count": applied})
}

func (s *WebServer) cancelOverride(c *fiber.Ctx) error {
	s.logger.Info("Cancel override request received")

	var req common.CancelOverrideRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Cancel override request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	restored, err := s.overrideService.CancelOverride(context.TODO(), sceneID)
	if err != nil {
		s.logger.Info("Cancel override failed:", err.Error())
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	s.logger.Infof("Override cancelled, %d slots restored on scene %s", restored, req.SceneID)
	return c.Status(http.StatusOK).JSON(fiber.Map{"restored_count": restored})
}

func (s *WebServer) cleanObjectSlots(c *fiber.Ctx) error {
	s.logger.Info("Clean slots request received")

	var req common.CleanSlotsRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Clean slots request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	removed, err := s.overrideService.CleanObjectSlots(context.TODO(), sceneID, req.ObjectID)
	if err != nil {
		s.logger.Info("Clean slots failed:", err.Error())
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"removed_count": removed})
}

func (s *WebServer) getOverrideStatus(c *fiber.Ctx) error {
	var req common.OverrideStatusRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	status, err := s.overrideService.GetOverrideStatus(context.TODO(), sceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusOK).JSON(status)
}

func (s *WebServer) listActiveOverrides(c *fiber.Ctx) error {
	s.logger.Info("List active overrides request received")

	sceneIDs, err := s.overrideService.ActiveOverrides(context.TODO())
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"scene_ids": sceneIDs})
}

func (s *WebServer) tagGenericMaterial(c *fiber.Ctx) error {
	s.logger.Info("Tag generic material request received")

	var req common.TagGenericRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	_, sceneID, err := s.requestIDs(c, req.SceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	tagged, err := s.overrideService.TagGenericMaterial(context.TODO(), sceneID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"tagged_count": tagged})
}

func (s *WebServer) getRoutes(c *fiber.Ctx) error {
	s.logger.Info("Get routes request received")
	routes := s.app.GetRoutes()
	return c.Status(http.StatusOK).JSON(routes)
}

func (s *WebServer) healthCheck(c *fiber.Ctx) error {
	s.logger.Info("Health check request received")
	return c.SendString("OK")
}
