// Package core assembles the services shared by the desktop window and the
// command line from a loaded configuration.
package core

import (
	"fmt"
	"os"

	"image-selector/internal/config"
	"image-selector/internal/logger"
	"image-selector/internal/models"
	"image-selector/internal/services"
)

const (
	component = "Core"

	thumbnailCacheSize = 256
)

// Services is the wired application context. Nothing in it is global.
type Services struct {
	Config    *config.Config
	Logger    logger.Logger
	AssetsDir string
	Store     *config.SavedStore
	Repo      *models.ImageRepository
	Operator  *services.BatchOperator
	Images    *services.ImageService

	thumbs  *services.CachedDecoder
	decoder services.Decoder
}

// matCounter is implemented by decoders that hold native image buffers
type matCounter interface {
	OpenMats() int64
}

// NewLogger builds the logger a configuration asks for
func NewLogger(cfg *config.Config) logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.JSONLogs {
		return logger.NewJSONLogger(level)
	}
	return logger.NewConsoleLogger(level)
}

// New wires the repository, batch operator and image service. decoder may be
// nil, in which case previews are unavailable and imports skip the decode
// probe.
func New(cfg *config.Config, log logger.Logger, decoder services.Decoder) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = NewLogger(cfg)
	}

	assetsDir, err := cfg.ResolvedAssetsDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	store := config.NewSavedStore(cfg.SavedPath())
	repo := models.NewImageRepository(store)
	skipped, err := repo.LoadSaved()
	if err != nil {
		return nil, fmt.Errorf("failed to load saved images: %w", err)
	}
	for _, entry := range skipped {
		log.Warning(component, "ignoring invalid saved entry", map[string]interface{}{
			"entry": entry,
			"file":  cfg.SavedPath(),
		})
	}

	s := &Services{
		Config:    cfg,
		Logger:    log,
		AssetsDir: assetsDir,
		Store:     store,
		Repo:      repo,
		decoder:   decoder,
	}

	var imageDecoder services.Decoder
	if decoder != nil {
		s.thumbs, err = services.NewCachedDecoder(decoder, thumbnailCacheSize)
		if err != nil {
			return nil, err
		}
		imageDecoder = s.thumbs
	}
	s.Images = services.NewImageService(imageDecoder, repo, assetsDir, log)

	s.Operator, err = services.NewBatchOperator(assetsDir, cfg.BundledAssets, repo, log)
	if err != nil {
		return nil, err
	}

	stats := repo.GetImageStats()
	log.Info(component, "services ready", map[string]interface{}{
		"assets_dir":   assetsDir,
		"bundled":      len(cfg.BundledAssets),
		"saved":        stats.SavedCount,
		"saved_file":   cfg.SavedPath(),
		"decoder":      decoder != nil,
		"skipped_refs": len(skipped),
	})
	return s, nil
}

// Close releases cached thumbnails and reports native buffers still open
func (s *Services) Close() {
	if s.thumbs != nil {
		n := s.thumbs.Len()
		s.thumbs.Purge()
		s.Logger.Debug(component, "thumbnail cache purged", map[string]interface{}{"entries": n})
	}
	if mc, ok := s.decoder.(matCounter); ok {
		open := mc.OpenMats()
		fields := map[string]interface{}{"open_mats": open}
		if open > 0 {
			s.Logger.Warning(component, "native image buffers still open at shutdown", fields)
			return
		}
		s.Logger.Debug(component, "native image buffers released", fields)
	}
}
