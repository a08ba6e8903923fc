package domain

import "errors"

// ErrCompanyNotFound возвращается при запросе несуществующей компании.
var ErrCompanyNotFound = errors.New("компания не найдена")
