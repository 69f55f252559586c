package entity

import (
	"database/sql"
	"time"
)

const (
	UserTypeOwner  = "owner"
	UserTypeClinic = "clinic"
)

type User struct {
	ID             string
	UserType       string
	Email          string
	CanonicalEmail string
	PasswordHash   string
	Name           string
	Phone          string
	Address        string
	Locality       sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u *User) IsClinic() bool {
	return u.UserType == UserTypeClinic
}

// Localities of Bogotá accepted for clinic accounts.
var knownLocalities = map[string]struct{}{
	"Usaquén":            {},
	"Chapinero":          {},
	"Santa Fe":           {},
	"San Cristóbal":      {},
	"Usme":               {},
	"Tunjuelito":         {},
	"Bosa":               {},
	"Kennedy":            {},
	"Fontibón":           {},
	"Engativá":           {},
	"Suba":               {},
	"Barrios Unidos":     {},
	"Teusaquillo":        {},
	"Los Mártires":       {},
	"Antonio Nariño":     {},
	"Puente Aranda":      {},
	"La Candelaria":      {},
	"Rafael Uribe Uribe": {},
	"Ciudad Bolívar":     {},
	"Sumapaz":            {},
}

func ValidLocality(locality string) bool {
	_, ok := knownLocalities[locality]
	return ok
}
