package service

import (
	"errors"

	"github.com/okian/stockwatch/internal/domain/model"
)

var (
	ErrRunInProgress     = model.ErrRunInProgress
	ErrMissingDependency = errors.New("service requires a source, a lookup and a store")
)
