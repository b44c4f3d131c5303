// Package auth resolves the Gemini API key for local tools and probes it
// against the API at start-up.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".ai-doodle-enhancer"
	credentialFile = "credentials.gpg"
	passphraseFile = ".gpg-passphrase"
)

// ErrNoAPIKey is returned when no key source yields a key.
var ErrNoAPIKey = errors.New("API key not found: set GEMINI_API_KEY or store it in ~/.ai-doodle-enhancer/credentials.gpg")

// ResolveAPIKey returns configured when it is non-empty, otherwise the key
// decrypted from the GPG credentials file in the user's home directory.
// The Lambda never calls this; it reads the key from SSM.
func ResolveAPIKey(ctx context.Context, configured string) (string, error) {
	if key := strings.TrimSpace(configured); key != "" {
		log.Debug().Msg("Using API key from configuration")
		return key, nil
	}

	key, err := getFromGPG(ctx)
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, nil
	}

	log.Debug().Err(err).Msg("No API key from GPG credentials")
	return "", ErrNoAPIKey
}

// getFromGPG decrypts the API key from the GPG-encrypted credentials file.
func getFromGPG(ctx context.Context) (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(credPath); err != nil {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	args := []string{"--decrypt", "--quiet"}
	if pp, ok := passphrasePath(); ok {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", pp)
	}
	args = append(args, credPath)

	output, err := exec.CommandContext(ctx, "gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}

// passphrasePath finds an owner-only .gpg-passphrase file in the working
// directory for non-interactive decryption.
func passphrasePath() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	p := filepath.Join(cwd, passphraseFile)
	fi, err := os.Stat(p)
	if err != nil {
		return "", false
	}
	if fi.Mode().Perm()&0o077 != 0 {
		log.Warn().
			Str("passphraseFile", p).
			Str("permissions", fmt.Sprintf("%04o", fi.Mode().Perm())).
			Msg("Passphrase file has insecure permissions (should be 0600); skipping")
		return "", false
	}
	return p, true
}
