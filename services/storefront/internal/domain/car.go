package domain

// FuelType is the engine fuel of a car.
type FuelType string

const (
	FuelGasoline FuelType = "GASOLINE"
	FuelDiesel   FuelType = "DIESEL"
	FuelElectric FuelType = "ELECTRIC"
	FuelHybrid   FuelType = "HYBRID"
)

// Transmission is the gearbox type of a car.
type Transmission string

const (
	TransmissionManual    Transmission = "MANUAL"
	TransmissionAutomatic Transmission = "AUTOMATIC"
)

// CarStatus is the publication status of a car.
type CarStatus string

const (
	StatusAvailable CarStatus = "AVAILABLE"
	StatusSold      CarStatus = "SOLD"
	StatusPending   CarStatus = "PENDING"
)

// Seller is the user who published a car.
type Seller struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Location is where a car can be seen.
type Location struct {
	City    string   `json:"city"`
	State   string   `json:"state"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Car is a marketplace listing as returned by the backend. The storefront
// never modifies a fetched car; timestamps are kept as the opaque strings
// the backend sends.
type Car struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Brand        string       `json:"brand"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	Price        float64      `json:"price"`
	Mileage      int          `json:"mileage"`
	Color        string       `json:"color"`
	FuelType     FuelType     `json:"fuelType"`
	Transmission Transmission `json:"transmission"`
	Status       CarStatus    `json:"status"`
	Images       []string     `json:"images"`
	Seller       Seller       `json:"seller"`
	Location     Location     `json:"location"`
	Features     []string     `json:"features"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    string       `json:"updatedAt"`
}

// LocationInput is the location part of a create or update request.
type LocationInput struct {
	City    string   `json:"city"`
	State   string   `json:"state"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// CarInput is the payload of createCar.
type CarInput struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Brand        string        `json:"brand"`
	Model        string        `json:"model"`
	Year         int           `json:"year"`
	Price        float64       `json:"price"`
	Mileage      int           `json:"mileage"`
	Color        string        `json:"color"`
	FuelType     FuelType      `json:"fuelType"`
	Transmission Transmission  `json:"transmission"`
	Images       []string      `json:"images"`
	Location     LocationInput `json:"location"`
	Features     []string      `json:"features"`
	SellerName   string        `json:"sellerName"`
	SellerEmail  string        `json:"sellerEmail"`
	SellerPhone  string        `json:"sellerPhone"`
}

// UpdateCarInput is the payload of updateCar. Nil fields are left unchanged.
type UpdateCarInput struct {
	ID           string         `json:"id" validate:"required"`
	Title        *string        `json:"title,omitempty" validate:"omitempty,min=5,max=100"`
	Description  *string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	Brand        *string        `json:"brand,omitempty"`
	Model        *string        `json:"model,omitempty" validate:"omitempty,min=1,max=50"`
	Year         *int           `json:"year,omitempty" validate:"omitempty,vehicle_year"`
	Price        *float64       `json:"price,omitempty" validate:"omitempty,gte=1000"`
	Mileage      *int           `json:"mileage,omitempty" validate:"omitempty,gte=0"`
	Color        *string        `json:"color,omitempty"`
	FuelType     *FuelType      `json:"fuelType,omitempty" validate:"omitempty,oneof=GASOLINE DIESEL ELECTRIC HYBRID"`
	Transmission *Transmission  `json:"transmission,omitempty" validate:"omitempty,oneof=MANUAL AUTOMATIC"`
	Status       *CarStatus     `json:"status,omitempty" validate:"omitempty,oneof=AVAILABLE SOLD PENDING"`
	Images       []string       `json:"images,omitempty"`
	Location     *LocationInput `json:"location,omitempty"`
	Features     []string       `json:"features,omitempty"`
}

// CarFilter narrows the cars query server-side. Zero values are omitted.
type CarFilter struct {
	Brand        string       `json:"brand,omitempty"`
	Model        string       `json:"model,omitempty"`
	MinYear      int          `json:"minYear,omitempty"`
	MaxYear      int          `json:"maxYear,omitempty"`
	MinPrice     float64      `json:"minPrice,omitempty"`
	MaxPrice     float64      `json:"maxPrice,omitempty"`
	MinMileage   int          `json:"minMileage,omitempty"`
	MaxMileage   int          `json:"maxMileage,omitempty"`
	FuelType     FuelType     `json:"fuelType,omitempty"`
	Transmission Transmission `json:"transmission,omitempty"`
	City         string       `json:"city,omitempty"`
	State        string       `json:"state,omitempty"`
}

// IsZero reports whether the filter constrains nothing.
func (f CarFilter) IsZero() bool {
	return f == CarFilter{}
}

// CarsPage is one page of a cars or searchCars result.
type CarsPage struct {
	Cars       []Car `json:"cars"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}
