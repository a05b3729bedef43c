package location

import "time"

// Location は貸出拠点エンティティを表す
type Location struct {
	ID        string
	Name      string
	Address   string
	City      string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLocation は新しい拠点を作成する
func NewLocation(name, address, city, phone string) *Location {
	now := time.Now()
	return &Location{
		Name:      name,
		Address:   address,
		City:      city,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は拠点の検証を行う
func (l *Location) Validate() error {
	if l.Name == "" {
		return ErrNameRequired
	}
	if l.City == "" {
		return ErrCityRequired
	}
	return nil
}
