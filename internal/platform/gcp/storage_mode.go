package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeDisk        ObjectStorageMode = "disk"
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// ObjectStorageConfig selects where product images live.
type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	Bucket       string
	CDNDomain    string
	EmulatorHost string
	// PublicBaseURL overrides the host used in returned image URLs.
	PublicBaseURL string
	// DiskDir and DiskURLPrefix are used in disk mode.
	DiskDir       string
	DiskURLPrefix string
	Credentials   string
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingBucket       ObjectStorageConfigErrorCode = "missing_bucket"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidURL          ObjectStorageConfigErrorCode = "invalid_url"
)

type ObjectStorageConfigError struct {
	Code  ObjectStorageConfigErrorCode
	Mode  string
	Value string
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf(
			"invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)",
			e.Mode,
			ObjectStorageModeDisk,
			ObjectStorageModeGCS,
			ObjectStorageModeGCSEmulator,
		)
	case ObjectStorageConfigErrorMissingBucket:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires PRODUCT_IMAGE_BUCKET", e.Mode)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", e.Mode)
	case ObjectStorageConfigErrorInvalidURL:
		return fmt.Sprintf("invalid URL %q; expected absolute URL like http://localhost:4443", e.Value)
	default:
		return "invalid object storage config"
	}
}

// Normalize lower-cases the mode, defaulting to disk, and validates what
// that mode needs.
func (cfg ObjectStorageConfig) Normalize() (ObjectStorageConfig, error) {
	cfg.Mode = ObjectStorageMode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	if cfg.Mode == "" {
		cfg.Mode = ObjectStorageModeDisk
	}
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")

	switch cfg.Mode {
	case ObjectStorageModeDisk:
		if cfg.DiskDir == "" {
			cfg.DiskDir = "data/media"
		}
		if cfg.DiskURLPrefix == "" {
			cfg.DiskURLPrefix = "/media"
		}
		return cfg, nil
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
	default:
		return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}

	if strings.TrimSpace(cfg.Bucket) == "" {
		return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Mode: string(cfg.Mode)}
	}
	if cfg.IsEmulatorMode() {
		if cfg.EmulatorHost == "" {
			return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
		}
		if !absoluteURL(cfg.EmulatorHost) {
			return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidURL, Mode: string(cfg.Mode), Value: cfg.EmulatorHost}
		}
	}
	if cfg.PublicBaseURL != "" && !absoluteURL(cfg.PublicBaseURL) {
		return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidURL, Mode: string(cfg.Mode), Value: cfg.PublicBaseURL}
	}
	return cfg, nil
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
