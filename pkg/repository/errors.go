package repository

import "github.com/pkg/errors"

var ErrAlreadyExists = errors.New("allowed user already exists")
var ErrNoDataDeleted = errors.New("no data deleted")
