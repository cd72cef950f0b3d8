package catalog

// Room is a sample unit offered in post-inquiry recommendations.
type Room struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	RentRM      int    `json:"rent_rm"`
	Parking     bool   `json:"parking"`
}

// standardRooms are recommended for mid and high budget bands.
var standardRooms = []Room{
	{Code: "A102", Description: "Private bathroom, 1 housemate", RentRM: 850, Parking: true},
	{Code: "B205", Description: "Private bathroom, studio-style", RentRM: 950, Parking: true},
	{Code: "C301", Description: "Shared bathroom, 2 housemates", RentRM: 780, Parking: false},
}

// valueRooms are recommended after a low-budget confirmation.
var valueRooms = []Room{
	{Code: "A102", Description: "Shared bathroom, 2 housemates", RentRM: 650, Parking: true},
	{Code: "B205", Description: "Private bathroom, 1 housemate", RentRM: 750, Parking: true},
	{Code: "C301", Description: "Shared bathroom, 3 housemates", RentRM: 680, Parking: false},
}

// Recommend returns sample rooms matching the budget band. Low bands get
// the value set, everything else the standard set.
func Recommend(budgetBand string) []Room {
	src := standardRooms
	if IsLowBudget(budgetBand) {
		src = valueRooms
	}
	out := make([]Room, len(src))
	copy(out, src)
	return out
}

// RoomCodes returns the codes a visitor can reply with after seeing
// recommendations.
func RoomCodes() []string {
	return []string{"A102", "B205", "C301"}
}
