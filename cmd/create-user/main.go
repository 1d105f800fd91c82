// CLI tool to create a user with a bcrypt-hashed password and an empty profile.
// Usage: go run ./cmd/create-user [-admin]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// newUser is what the prompts collect.
type newUser struct {
	Username string
	Email    string
	Password string
	Role     string
}

func main() {
	admin := flag.Bool("admin", false, "grant the admin role")
	flag.Parse()

	_ = godotenv.Load()

	u, err := promptUser(os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *admin {
		u.Role = "admin"
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	userID, authToken, err := createUser(ctx, conn, u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", u.Username)
	fmt.Printf("  Role:       %s\n", u.Role)
	fmt.Printf("  Auth Token: %s\n", authToken)
}

// promptUser reads username, email and password, one per line.
func promptUser(in io.Reader, out io.Writer) (newUser, error) {
	reader := bufio.NewReader(in)
	read := func(label string) string {
		fmt.Fprintf(out, "%s: ", label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	u := newUser{
		Username: read("Username"),
		Email:    read("Email"),
		Password: read("Password"),
		Role:     "user",
	}
	switch {
	case u.Username == "":
		return newUser{}, errors.New("username is required")
	case !strings.Contains(u.Email, "@"):
		return newUser{}, errors.New("a valid email is required")
	case len(u.Password) < 8:
		return newUser{}, errors.New("password must be at least 8 characters")
	}
	return u, nil
}

// createUser inserts the user and its empty profile row in one transaction.
func createUser(ctx context.Context, conn *pgx.Conn, u newUser) (int, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", fmt.Errorf("hash password: %w", err)
	}
	authToken := uuid.New().String()

	var userID int
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (username, email, role, password, auth_token)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			u.Username, u.Email, u.Role, string(hash), authToken,
		).Scan(&userID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, userID)
		return err
	})
	if err != nil {
		return 0, "", err
	}
	return userID, authToken, nil
}
