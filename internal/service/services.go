package service

import (
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

type Services struct {
	AuthService       AuthService
	CollectionService CollectionService
	AppInfoService    AppInfoService
}

func NewServices(storages *store.Storages, cfg config.ServerApp, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("app info service: %w", err)
	}

	collections := NewCollectionService(storages.CollectionRepository, utils.NewUUIDGenerator(), logger)

	return &Services{
		AuthService:       NewAuthService(cfg, logger),
		CollectionService: NewCollectionValidationService().Wrap(collections),
		AppInfoService:    appInfo,
	}, nil
}
