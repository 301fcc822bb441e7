package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/studentrecords/internal/app/controllers"
	appMigrations "github.com/yigit/studentrecords/internal/app/migrations"
	appRepos "github.com/yigit/studentrecords/internal/app/repositories"
	appRoutes "github.com/yigit/studentrecords/internal/app/routes"
	appServices "github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/config"
	"github.com/yigit/studentrecords/internal/db"
	appMiddleware "github.com/yigit/studentrecords/internal/middleware"
	pkgAuth "github.com/yigit/studentrecords/internal/pkg/auth"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
	"github.com/yigit/studentrecords/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos      *appRepos.Repositories
	TxManager  *db.TxManager
	JWTService *pkgAuth.JWTService

	AuthService         *appServices.AuthService
	DepartmentService   appServices.DepartmentService
	CourseService       appServices.CourseService
	StudentService      appServices.StudentService
	EnrollmentService   appServices.EnrollmentService
	AttendanceService   appServices.AttendanceService
	FeeService          appServices.FeeService
	AnnouncementService appServices.AnnouncementService
	ReportService       appServices.ReportService
	ExportService       appServices.ExportService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(dbPool)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		repos := appRepos.NewRepositories(dbPool)
		seeder := seed.New(repos.DepartmentRepository, repos.CourseRepository, repos.OperatorRepository, seed.Options{
			AdminUsername: cfg.Seed.AdminUsername,
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
			SampleData:    cfg.Seed.SampleData,
		})
		if err := seeder.Run(ctx); err != nil {
			// Startup continues without default data
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	clock := appServices.Clock(time.Now)

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.TxManager = db.NewTxManager(dbPool)
	repos := deps.Repos

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(repos.OperatorRepository, deps.JWTService, clock)

	deps.CourseService = appServices.NewCourseService(
		repos.CourseRepository,
		repos.DepartmentRepository,
		repos.EnrollmentRepository,
		repos.AttendanceRepository,
		deps.TxManager,
	)
	deps.DepartmentService = appServices.NewDepartmentService(
		repos.DepartmentRepository,
		repos.StudentRepository,
		repos.AnnouncementRepository,
		deps.CourseService,
		deps.TxManager,
	)

	identifiers := appServices.NewIdentifierService(repos.StudentRepository, repos.SequenceRepository, cfg.Records.FallbackScope)
	deps.StudentService = appServices.NewStudentService(appServices.StudentServiceDeps{
		Students:    repos.StudentRepository,
		Departments: repos.DepartmentRepository,
		Enrollments: repos.EnrollmentRepository,
		Attendance:  repos.AttendanceRepository,
		Fees:        repos.FeeRepository,
		Identifiers: identifiers,
		Tx:          deps.TxManager,
		Clock:       clock,
	})

	deps.EnrollmentService = appServices.NewEnrollmentService(
		repos.EnrollmentRepository,
		repos.StudentRepository,
		repos.CourseRepository,
		clock,
	)
	deps.AttendanceService = appServices.NewAttendanceService(
		repos.AttendanceRepository,
		repos.EnrollmentRepository,
		repos.CourseRepository,
		cfg.Records.ChartDays,
		clock,
	)
	deps.FeeService = appServices.NewFeeService(repos.FeeRepository, repos.StudentRepository, deps.TxManager, clock)
	deps.AnnouncementService = appServices.NewAnnouncementService(repos.AnnouncementRepository, repos.DepartmentRepository, clock)
	deps.ReportService = appServices.NewReportService(
		repos.ReportRepository,
		deps.AttendanceService,
		deps.AnnouncementService,
		appServices.ReportOptions{
			Announcements:      cfg.Records.DashboardAnnouncements,
			AdmissionTrendDays: cfg.Records.AdmissionTrendDays,
		},
		clock,
	)
	deps.ExportService = appServices.NewExportService(deps.StudentService, deps.AttendanceService)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService),
		Department:   appControllers.NewDepartmentController(deps.DepartmentService),
		Course:       appControllers.NewCourseController(deps.CourseService),
		Student:      appControllers.NewStudentController(deps.StudentService, deps.EnrollmentService, cfg.Records.StudentPageSize),
		Enrollment:   appControllers.NewEnrollmentController(deps.EnrollmentService),
		Attendance:   appControllers.NewAttendanceController(deps.AttendanceService),
		Fee:          appControllers.NewFeeController(deps.FeeService, cfg.Records.FeePageSize),
		Announcement: appControllers.NewAnnouncementController(deps.AnnouncementService),
		Report:       appControllers.NewReportController(deps.ReportService),
		Export:       appControllers.NewExportController(deps.ExportService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	// Handlers pass *gin.Context as context.Context; fall back to the request context
	// so the request logger and transactions stored there are visible.
	router.ContextWithFallback = true
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router, "localhost:"+cfg.Server.Port)
	}
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", appMiddleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
