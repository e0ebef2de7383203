package config

import (
	"encoding/base64"
	"fmt"
	"strings"
)

type Config struct {
	DatabaseDSN    string
	ServerAddr     string
	SigningKey     []byte
	AllowedOrigins []string
	MigrationsDir  string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func parseAllowedOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	parsed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			parsed = append(parsed, p)
		}
	}
	return parsed
}

func NewConfig(serverAddr, databaseDSN, base64Secret, allowedOrigins, migrationsDir string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	// Decode the base64 encoded signing secret
	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	return &Config{
		DatabaseDSN:    databaseDSN,
		ServerAddr:     serverAddr,
		SigningKey:     signingKey,
		AllowedOrigins: parseAllowedOrigins(allowedOrigins),
		MigrationsDir:  migrationsDir,
	}, nil
}
