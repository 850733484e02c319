package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/thermolog/thermolog/internal/server/config"
	"github.com/thermolog/thermolog/internal/server/services"
	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/models"
	"github.com/thermolog/thermolog/pkg/utils"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands",
	Long:  "Administrative commands for managing users and device alert thresholds",
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a dashboard user",
	Run:   runCreateUserCommand,
}

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List all dashboard users",
	Run:   runListUsersCommand,
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset a user's password",
	Run:   runResetPasswordCommand,
}

var setThresholdCmd = &cobra.Command{
	Use:   "set-threshold",
	Short: "Set alert thresholds for a device",
	Run:   runSetThresholdCommand,
}

func init() {
	createUserCmd.Flags().String("username", "", "Username (required)")
	createUserCmd.Flags().String("password", "", "Password (required)")
	createUserCmd.Flags().String("email", "", "Email for OTP delivery (required)")
	createUserCmd.Flags().String("role", models.RoleUser, "Role: admin or user")
	createUserCmd.MarkFlagRequired("username")
	createUserCmd.MarkFlagRequired("password")
	createUserCmd.MarkFlagRequired("email")

	resetPasswordCmd.Flags().String("username", "", "Username (required)")
	resetPasswordCmd.Flags().String("password", "", "New password (required)")
	resetPasswordCmd.MarkFlagRequired("username")
	resetPasswordCmd.MarkFlagRequired("password")

	setThresholdCmd.Flags().String("device-id", "", "Device identifier (required)")
	setThresholdCmd.Flags().Float64("temp-high", 30, "High temperature limit")
	setThresholdCmd.Flags().Float64("temp-low", 15, "Low temperature limit")
	setThresholdCmd.Flags().Float64("hum-high", 70, "High humidity limit")
	setThresholdCmd.Flags().Float64("hum-low", 30, "Low humidity limit")
	setThresholdCmd.MarkFlagRequired("device-id")

	adminCmd.AddCommand(
		createUserCmd,
		listUsersCmd,
		resetPasswordCmd,
		setThresholdCmd,
	)
}

func openDB() *storage.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := storage.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func runCreateUserCommand(cmd *cobra.Command, args []string) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	email, _ := cmd.Flags().GetString("email")
	role, _ := cmd.Flags().GetString("role")

	db := openDB()
	defer db.Close()

	userService := services.NewUserService(storage.NewUserRepository(db))

	user, err := userService.Create(context.Background(), username, password, role, email)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Println("✓ User created successfully!")
	fmt.Printf("ID: %s\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Role: %s\n", user.Role)
	fmt.Printf("Email: %s\n", user.Email)
}

func runListUsersCommand(cmd *cobra.Command, args []string) {
	db := openDB()
	defer db.Close()

	userRepo := storage.NewUserRepository(db)

	users, err := userRepo.ListAll(context.Background())
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}

	if len(users) == 0 {
		fmt.Println("No users registered.")
		return
	}

	fmt.Printf("Users (%d):\n", len(users))
	fmt.Println(strings.Repeat("=", 100))
	fmt.Printf("%-36s %-20s %-8s %-30s\n", "ID", "Username", "Role", "Email")
	fmt.Println(strings.Repeat("=", 100))

	for _, user := range users {
		fmt.Printf("%-36s %-20s %-8s %-30s\n",
			user.ID,
			user.Username,
			user.Role,
			user.Email,
		)
	}
	fmt.Println(strings.Repeat("=", 100))
}

func runResetPasswordCommand(cmd *cobra.Command, args []string) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	db := openDB()
	defer db.Close()

	userRepo := storage.NewUserRepository(db)
	ctx := context.Background()

	user, err := userRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Fatalf("Failed to look up user: %v", err)
	}
	if user == nil {
		log.Fatalf("User not found: %s", username)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		log.Fatalf("Failed to update password: %v", err)
	}

	fmt.Printf("✓ Password reset for %s (%s)\n", user.Username, user.ID)
}

func runSetThresholdCommand(cmd *cobra.Command, args []string) {
	deviceID, _ := cmd.Flags().GetString("device-id")
	tempHigh, _ := cmd.Flags().GetFloat64("temp-high")
	tempLow, _ := cmd.Flags().GetFloat64("temp-low")
	humHigh, _ := cmd.Flags().GetFloat64("hum-high")
	humLow, _ := cmd.Flags().GetFloat64("hum-low")

	if tempHigh < tempLow || humHigh < humLow {
		log.Fatalf("High thresholds must not be below low thresholds")
	}

	db := openDB()
	defer db.Close()

	thresholdRepo := storage.NewThresholdRepository(db)

	threshold := &models.Threshold{
		DeviceID: deviceID,
		TempHigh: tempHigh,
		TempLow:  tempLow,
		HumHigh:  humHigh,
		HumLow:   humLow,
	}
	if err := thresholdRepo.Upsert(context.Background(), threshold); err != nil {
		log.Fatalf("Failed to save threshold: %v", err)
	}

	fmt.Printf("✓ Threshold saved for device %s\n", deviceID)
	fmt.Printf("Temperature: %.1f - %.1f\n", tempLow, tempHigh)
	fmt.Printf("Humidity: %.1f - %.1f\n", humLow, humHigh)
}
