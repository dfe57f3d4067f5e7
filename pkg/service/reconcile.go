package service

import (
	"context"

	"go.uber.org/zap"

	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
	"github.com/conwetlab/privatedatasets-backend/pkg/repository"
)

// ReconcileAllowedUsers computes to_add = desired - current and
// to_remove = current - desired and applies removes before adds inside
// one transaction. The two sets are disjoint by construction, so the
// order never affects the final state, but applying removes first means
// a concurrent reader can never observe a refreshed index with a stale
// allow-list.
func (s *service) ReconcileAllowedUsers(ctx context.Context, packageID string, desired []string) (bool, error) {
	if desired == nil {
		// field absent from the update: no change requested
		return false, nil
	}

	logger, _ := custom_logger.GetZapLogger(ctx)

	desiredSet := make(map[string]struct{}, len(desired))
	for _, userName := range desired {
		desiredSet[userName] = struct{}{}
	}

	changed := false
	err := s.repository.WithTransaction(ctx, func(repo repository.Repository) error {
		entries, err := repo.ListAllowedUsers(ctx, repository.AllowedUserFilter{PackageID: packageID})
		if err != nil {
			return err
		}

		currentSet := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			currentSet[entry.UserName] = struct{}{}
		}

		for userName := range currentSet {
			if _, ok := desiredSet[userName]; !ok {
				if err := repo.DeleteAllowedUser(ctx, packageID, userName); err != nil {
					return err
				}
				changed = true
			}
		}
		for userName := range desiredSet {
			if _, ok := currentSet[userName]; !ok {
				if err := repo.AddAllowedUser(ctx, packageID, userName); err != nil {
					return err
				}
				changed = true
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		logger.Info("allow-list reconciled",
			zap.String("package_id", packageID),
			zap.Int("allowed_users", len(desiredSet)))
	}
	return changed, nil
}

// PurgeAllowedUsers drops every entry of a deleted dataset so that no
// allow-list rows outlive their package.
func (s *service) PurgeAllowedUsers(ctx context.Context, packageID string) error {
	return s.repository.WithTransaction(ctx, func(repo repository.Repository) error {
		return repo.DeleteAllowedUsersByPackage(ctx, packageID)
	})
}
