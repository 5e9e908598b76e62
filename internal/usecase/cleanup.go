package usecase

import (
	"context"
	"time"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/mapmarket/reaction-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// inactivityWindow is how long an account may go without being seen before the
// sweep removes it.
const inactivityWindow = 6 // months

// Cleaner runs the scheduled maintenance sweeps. Each item is handled
// independently so one bad record never aborts a whole run.
type Cleaner struct {
	users    domain.UserRepository
	listings domain.ListingRepository
	accounts domain.AccountDeleter
	store    domain.ObjectStore
	metrics  *metrics.Manager
	logger   *logger.Logger
}

func NewCleaner(
	users domain.UserRepository,
	listings domain.ListingRepository,
	accounts domain.AccountDeleter,
	store domain.ObjectStore,
	m *metrics.Manager,
	log *logger.Logger,
) *Cleaner {
	return &Cleaner{
		users:    users,
		listings: listings,
		accounts: accounts,
		store:    store,
		metrics:  m,
		logger:   log.Named("Cleaner"),
	}
}

// SweepInactiveAccounts deletes users not seen for six months, removing the
// user document first and the auth credential second. Listings owned by a
// deleted user are left in place and reported.
func (c *Cleaner) SweepInactiveAccounts(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, -inactivityWindow, 0)
	stale, err := c.users.FindLastSeenBefore(ctx, cutoff)
	if err != nil {
		c.logger.Error("Failed to query inactive accounts", zap.Error(err))
		return err
	}
	c.logger.Info("Inactive account sweep starting",
		zap.Time("cutoff", cutoff), zap.Int("candidates", len(stale)))

	var deleted int
	for _, user := range stale {
		log := c.logger.With(zap.String("uid", user.UID))

		if n, err := c.listings.CountBySeller(ctx, user.UID); err != nil {
			log.Error("Failed to count listings for inactive account", zap.Error(err))
		} else if n > 0 {
			log.Warn("Deleting account that still owns listings; listings are orphaned, not removed",
				zap.Int64("listings", n))
		}

		if err := c.users.Delete(ctx, user.UID); err != nil {
			log.Error("Failed to delete user document", zap.Error(err))
			continue
		}
		if c.accounts != nil {
			if err := c.accounts.DeleteAccount(ctx, user.UID); err != nil {
				log.Error("Failed to delete auth account; user document already removed", zap.Error(err))
				continue
			}
		}
		c.metrics.CleanupDeletedTotal.WithLabelValues("inactive_accounts").Inc()
		deleted++
	}

	c.logger.Info("Inactive account sweep finished",
		zap.Int("candidates", len(stale)), zap.Int("deleted", deleted))
	return nil
}

// SweepOrphanedMedia deletes stored objects no active listing references.
// Derivatives survive as long as their original is referenced.
func (c *Cleaner) SweepOrphanedMedia(ctx context.Context) error {
	if c.store == nil {
		c.logger.Info("Object store not configured, skipping media sweep")
		return nil
	}

	urls, err := c.listings.ActiveImageURLs(ctx)
	if err != nil {
		c.logger.Error("Failed to collect active image URLs", zap.Error(err))
		return err
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if key, ok := c.store.KeyForURL(url); ok {
			referenced[key] = struct{}{}
		}
	}

	keys, err := c.store.List(ctx, MediaPrefix)
	if err != nil {
		c.logger.Error("Failed to list stored media", zap.Error(err))
		return err
	}

	var deleted int
	for _, key := range keys {
		if _, ok := referenced[key]; ok {
			continue
		}
		if parent, isThumb := IsDerivativeKey(key); isThumb {
			if _, ok := referenced[parent]; ok {
				continue
			}
		}
		if err := c.store.Remove(ctx, key); err != nil {
			c.logger.Error("Failed to remove orphaned object", zap.String("key", key), zap.Error(err))
			continue
		}
		c.metrics.CleanupDeletedTotal.WithLabelValues("orphaned_media").Inc()
		deleted++
	}

	c.logger.Info("Orphaned media sweep finished",
		zap.Int("stored", len(keys)), zap.Int("referenced", len(referenced)), zap.Int("deleted", deleted))
	return nil
}
