package tiers

import "errors"

var (
	ErrFailedToLoadTiers        = errors.New("failed to load tier catalog")
	ErrInvalidTierConfiguration = errors.New("invalid tier configuration")
	ErrTierNotFound             = errors.New("tier not found")
)
