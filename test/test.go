package test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rabithua/memoask/server/profile"
)

// TestingSuperAdminID is the super-admin id carried by testing profiles.
const TestingSuperAdminID = "super-admin"

func GetTestingProfile(t *testing.T) *profile.Profile {
	dir := t.TempDir()
	return &profile.Profile{
		Mode:            "dev",
		Port:            8082,
		Data:            dir,
		DSN:             filepath.Join(dir, fmt.Sprintf("memoask_%s.db", "dev")),
		Version:         profile.Version,
		Secret:          "testing-secret",
		SuperAdminID:    TestingSuperAdminID,
		SecretMarker:    "flag{testing_marker}",
		TrustedNetworks: []string{},
		LLM: profile.LLM{
			Model: "gpt-4o-mini",
		},
	}
}
