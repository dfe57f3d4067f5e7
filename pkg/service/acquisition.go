package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/conwetlab/privatedatasets-backend/pkg/constant"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
	"github.com/conwetlab/privatedatasets-backend/pkg/parser"
)

// PackageAcquired grants read access for every (user, dataset) pair in
// the notification. One bad dataset reference never blocks the rest of
// the batch; parser configuration and payload errors fail the whole
// request before any item is processed.
func (s *service) PackageAcquired(ctx context.Context, reqCtx datamodel.RequestContext, rawNotification []byte) (*AcquisitionResult, error) {
	return s.ingestNotification(ctx, reqCtx, constant.ActionPackageAcquired, rawNotification, s.grantAccess)
}

// RevokeAccess removes every (user, dataset) pair in the notification
// from the corresponding allow-lists, with the same partial-failure
// semantics as PackageAcquired.
func (s *service) RevokeAccess(ctx context.Context, reqCtx datamodel.RequestContext, rawNotification []byte) (*AcquisitionResult, error) {
	return s.ingestNotification(ctx, reqCtx, constant.ActionRevokeAccess, rawNotification, s.revokeAccess)
}

// mutateFn applies one (user, dataset) mutation and reports a warning
// string, or "" when the item needs no warning.
type mutateFn func(ctx context.Context, reqCtx datamodel.RequestContext, userName string, datasetID string) string

func (s *service) ingestNotification(ctx context.Context, reqCtx datamodel.RequestContext, action string, rawNotification []byte, mutate mutateFn) (*AcquisitionResult, error) {
	logger, _ := custom_logger.GetZapLogger(ctx)
	logger.Info("notification received", zap.String("action", action))

	if err := s.aclEngine.CheckAccess(ctx, reqCtx, action, nil); err != nil {
		return nil, err
	}

	notificationParser, err := parser.New(s.cfg)
	if err != nil {
		return nil, err
	}

	parsed, err := notificationParser.Parse(ctx, rawNotification)
	if err != nil {
		return nil, err
	}

	warns := []string{}
	for _, userInfo := range parsed.UsersDatasets {
		for _, datasetID := range userInfo.Datasets {
			if warn := mutate(ctx, reqCtx, userInfo.User, datasetID); warn != "" {
				logger.Warn(warn, zap.String("package_id", datasetID))
				warns = append(warns, warn)
			}
		}
	}

	if len(warns) > 0 {
		return &AcquisitionResult{Warns: warns}, nil
	}
	return nil, nil
}

// grantAccess adds userName to one dataset's allow-list. The show call
// is flagged as an internal callback so the allow-list is visible even
// though the notifying actor is not the creator; the update runs as the
// dataset's creator so the catalog's standard update authorization
// passes without granting the notifier any update rights.
func (s *service) grantAccess(ctx context.Context, reqCtx datamodel.RequestContext, userName string, datasetID string) string {
	logger, _ := custom_logger.GetZapLogger(ctx)

	showCtx := datamodel.RequestContext{Actor: reqCtx.Actor, BypassAuth: true, InternalCallback: true}
	dataset, err := s.catalog.PackageShow(ctx, showCtx, datasetID)
	if err != nil {
		if errors.Is(err, errdomain.ErrNotFound) {
			return fmt.Sprintf("Dataset %s was not found in this instance", datasetID)
		}
		return fmt.Sprintf("%s: %s", datasetID, err.Error())
	}

	// adding users to a public dataset would be rejected by the update
	// validation anyway; guard here to keep the warning explicit
	if !dataset.Private {
		return fmt.Sprintf("Unable to upload the dataset %s: It's a public dataset", datasetID)
	}

	if dataset.HasAllowedUser(userName) {
		logger.Warn("user already allowed to access the dataset",
			zap.String("user", userName), zap.String("package_id", datasetID))
		return ""
	}

	if dataset.AllowedUsers == nil {
		dataset.AllowedUsers = []string{}
	}
	dataset.AllowedUsers = append(dataset.AllowedUsers, userName)

	if warn := s.updateAsCreator(ctx, dataset, datasetID); warn != "" {
		return warn
	}

	logger.Info("allowed user added",
		zap.String("user", userName), zap.String("package_id", datasetID))
	return ""
}

// revokeAccess removes userName from one dataset's allow-list.
func (s *service) revokeAccess(ctx context.Context, reqCtx datamodel.RequestContext, userName string, datasetID string) string {
	logger, _ := custom_logger.GetZapLogger(ctx)

	showCtx := datamodel.RequestContext{Actor: reqCtx.Actor, BypassAuth: true, InternalCallback: true}
	dataset, err := s.catalog.PackageShow(ctx, showCtx, datasetID)
	if err != nil {
		if errors.Is(err, errdomain.ErrNotFound) {
			return fmt.Sprintf("Dataset %s was not found in this instance", datasetID)
		}
		return fmt.Sprintf("%s: %s", datasetID, err.Error())
	}

	if !dataset.Private {
		return fmt.Sprintf("Unable to upload the dataset %s: It's a public dataset", datasetID)
	}

	if !dataset.HasAllowedUser(userName) {
		return ""
	}

	dataset.AllowedUsers = slices.DeleteFunc(dataset.AllowedUsers, func(u string) bool {
		return u == userName
	})

	if warn := s.updateAsCreator(ctx, dataset, datasetID); warn != "" {
		return warn
	}

	logger.Info("allowed user removed",
		zap.String("user", userName), zap.String("package_id", datasetID))
	return ""
}

// updateAsCreator persists the dataset through the host update API,
// acting as the dataset's creator.
func (s *service) updateAsCreator(ctx context.Context, dataset *datamodel.Dataset, datasetID string) string {
	creator, err := s.catalog.UserShow(ctx, dataset.CreatorUserID)
	if err != nil {
		return fmt.Sprintf("%s: creator %s could not be resolved", datasetID, dataset.CreatorUserID)
	}

	updateCtx := datamodel.RequestContext{
		Actor: &datamodel.Actor{ID: creator.ID, Name: creator.Name},
	}
	if _, err := s.catalog.PackageUpdate(ctx, updateCtx, dataset); err != nil {
		var vErr *errdomain.ValidationError
		if errors.As(err, &vErr) {
			return fmt.Sprintf("%s(%s): %s", datasetID, constant.AllowedUsersKey,
				vErr.FieldMessage(constant.AllowedUsersKey))
		}
		return fmt.Sprintf("%s: %s", datasetID, err.Error())
	}
	return ""
}
