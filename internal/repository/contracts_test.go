package repository_test

import (
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/repository"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/service"
)

// The postgres repositories must keep satisfying the storage contracts the
// services are written against.
var (
	_ service.ProfileRepository = (*repository.ProfileRepository)(nil)
	_ service.SessionRepository = (*repository.SessionRepository)(nil)
	_ service.EventRepository   = (*repository.EventRepository)(nil)
)
