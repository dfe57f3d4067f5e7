package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/conwetlab/privatedatasets-backend/pkg/constant"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
	"github.com/conwetlab/privatedatasets-backend/pkg/repository"
)

// AcquisitionsList returns the datasets a user has been granted access
// to. An empty user defaults to the requesting actor. Datasets the
// caller can no longer read, and datasets that are not active, are
// silently skipped.
func (s *service) AcquisitionsList(ctx context.Context, reqCtx datamodel.RequestContext, user string) ([]*datamodel.Dataset, error) {
	logger, _ := custom_logger.GetZapLogger(ctx)

	if user == "" {
		user = reqCtx.ActorName()
	}

	if err := s.aclEngine.CheckAccess(ctx, reqCtx, constant.ActionAcquisitionsList, user); err != nil {
		return nil, err
	}

	if _, err := s.catalog.UserShow(ctx, user); err != nil {
		return nil, errors.Wrap(errdomain.ErrNotFound, fmt.Sprintf("User %s does not exist", user))
	}

	entries, err := s.repository.ListAllowedUsers(ctx, repository.AllowedUserFilter{UserName: user})
	if err != nil {
		return nil, err
	}

	result := []*datamodel.Dataset{}
	for _, entry := range entries {
		dataset, err := s.catalog.PackageShow(ctx, reqCtx, entry.PackageID)
		if err != nil {
			// an acquired dataset may have been deleted or hidden since
			logger.Warn("acquired dataset could not be fetched",
				zap.String("package_id", entry.PackageID), zap.Error(err))
			continue
		}
		if dataset.State == constant.StateActive {
			result = append(result, dataset)
		}
	}

	return result, nil
}
