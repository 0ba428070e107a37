package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
)

func TestStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "localstore_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create Store: %v", err)
	}

	settings := mealplan.UserSettings{
		APIKey:      "sk-local-only",
		CookName:    "Asha",
		CookContact: "555-0101",
	}

	t.Run("ReadMissingKey", func(t *testing.T) {
		var out mealplan.UserSettings
		found, err := store.Read(KeySettings, &out)
		if err != nil {
			t.Fatalf("Expected no error for a missing key, got %v", err)
		}
		if found {
			t.Error("Expected found=false for a missing key")
		}
	})

	t.Run("WriteAndRead", func(t *testing.T) {
		if err := store.Write(KeySettings, settings); err != nil {
			t.Fatalf("Failed to write settings: %v", err)
		}

		filePath := filepath.Join(tempDir, KeySettings+".json")
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			t.Errorf("Expected file '%s' to be created, but it wasn't", filePath)
		}

		var out mealplan.UserSettings
		found, err := store.Read(KeySettings, &out)
		if err != nil {
			t.Fatalf("Failed to read settings: %v", err)
		}
		if !found {
			t.Fatal("Expected found=true after write")
		}
		if out != settings {
			t.Errorf("Expected %+v, got %+v", settings, out)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		if !store.Exists(KeySettings) {
			t.Error("Expected settings key to exist")
		}
		if store.Exists(KeyCurrentPlan) {
			t.Error("Expected current plan key to not exist")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(KeySettings); err != nil {
			t.Fatalf("Failed to delete settings: %v", err)
		}
		if store.Exists(KeySettings) {
			t.Error("Expected settings key to be gone after delete")
		}
		// Deleting again must not error.
		if err := store.Delete(KeySettings); err != nil {
			t.Errorf("Expected no error deleting an absent key, got %v", err)
		}
	})

	t.Run("MalformedBlob", func(t *testing.T) {
		filePath := filepath.Join(tempDir, KeySchedule+".json")
		if err := os.WriteFile(filePath, []byte("{not json"), 0644); err != nil {
			t.Fatalf("Failed to write malformed blob: %v", err)
		}
		var out mealplan.Schedule
		if _, err := store.Read(KeySchedule, &out); err == nil {
			t.Fatal("Expected an error for a malformed blob, got nil")
		}
	})
}
