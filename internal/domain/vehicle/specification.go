package vehicle

import "time"

// Specification は車種テンプレートを表す
// 複数の車両が1つのテンプレートを共有する不変の記述情報
type Specification struct {
	ID           string
	Make         string
	Model        string
	Year         int
	Category     string
	Seats        int
	Transmission string
	FuelType     string
	Features     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSpecification は新しい車種テンプレートを作成する
func NewSpecification(make_, model string, year int, category string, seats int, transmission, fuelType string, features []string) *Specification {
	now := time.Now()
	return &Specification{
		Make:         make_,
		Model:        model,
		Year:         year,
		Category:     category,
		Seats:        seats,
		Transmission: transmission,
		FuelType:     fuelType,
		Features:     features,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate は車種テンプレートの検証を行う
func (s *Specification) Validate() error {
	if s.Make == "" || s.Model == "" {
		return ErrMakeModelRequired
	}
	if s.Year < 1980 {
		return ErrInvalidYear
	}
	return nil
}
