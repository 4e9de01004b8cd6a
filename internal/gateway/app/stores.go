package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nexus/internal/contact"
	"nexus/internal/gateway/config"
	"nexus/internal/gateway/repository/imagestore"
	"nexus/internal/gateway/repository/inbox"
)

type gatewayStores struct {
	images      imagestore.Publisher
	imagesLabel string
	inbox       inbox.Store
	submitter   contact.Submitter
	inboxLabel  string
	closers     []func() error
}

func initStores(cfg *config.Config, log *zap.Logger) (*gatewayStores, error) {
	if log == nil {
		log = zap.NewNop()
	}
	stores := &gatewayStores{}

	if cfg.Images.CanUseS3() {
		s3Store, err := imagestore.NewS3Store(imagestore.S3Config{
			Endpoint:  cfg.Images.Endpoint,
			Region:    cfg.Images.Region,
			AccessKey: cfg.Images.AccessKey,
			SecretKey: cfg.Images.SecretKey,
			Bucket:    cfg.Images.Bucket,
			UseSSL:    cfg.Images.UseSSL,
			URLExpiry: cfg.Images.URLExpiry,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize image s3 store: %w", err)
		}
		stores.images = s3Store
		stores.imagesLabel = "s3:" + cfg.Images.Bucket
	} else {
		if cfg.Images.Enabled {
			log.Warn("image store: using inline fallback (s3 config incomplete)")
		}
		stores.images = imagestore.InlinePublisher{}
		stores.imagesLabel = "inline"
	}

	if dsn := strings.TrimSpace(cfg.Inbox.DatabaseURL); dsn != "" {
		pg, err := inbox.NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open contact inbox: %w", err)
		}
		stores.inbox = pg
		stores.submitter = pg
		stores.inboxLabel = "postgres"
		stores.closers = append(stores.closers, pg.Close)
	} else {
		// No real delivery target: keep the fixed delay so the site still
		// shows its submitting state, and record into memory.
		mem := inbox.NewMemoryStore()
		delay := contact.DelaySubmitter{Delay: cfg.ContactSubmitDelay}
		stores.inbox = mem
		stores.submitter = contact.SubmitterFunc(func(ctx context.Context, f contact.FormState) error {
			if err := delay.Submit(ctx, f); err != nil {
				return err
			}
			return mem.Submit(ctx, f)
		})
		stores.inboxLabel = "memory"
	}
	return stores, nil
}

func (s *gatewayStores) close() {
	for _, c := range s.closers {
		_ = c()
	}
}
