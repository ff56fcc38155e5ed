package domain

var fuelLabels = map[FuelType]string{
	FuelGasoline: "⛽ Gasolina",
	FuelDiesel:   "🛢️ Diesel",
	FuelElectric: "⚡ Eléctrico",
	FuelHybrid:   "🔋 Híbrido",
}

var statusLabels = map[CarStatus]string{
	StatusAvailable: "Disponible",
	StatusSold:      "Vendido",
	StatusPending:   "Pendiente",
}

// Label returns the Spanish display name; unknown values are shown raw.
func (f FuelType) Label() string {
	if l, ok := fuelLabels[f]; ok {
		return l
	}
	return string(f)
}

// Label returns the Spanish display name. Anything but AUTOMATIC is shown
// as manual.
func (t Transmission) Label() string {
	if t == TransmissionAutomatic {
		return "Automática"
	}
	return "Manual"
}

// Label returns the Spanish display name; unknown values are shown raw.
func (s CarStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
