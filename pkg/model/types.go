package model

import "time"

// Reading is one successful balance snapshot from the utility portal.
// A reading is created once per poll and never mutated afterwards.
type Reading struct {
	RemainingEnergy float64   `json:"remaining_energy"`
	RemainingMoney  float64   `json:"remaining_money"`
	MeterRoomID     string    `json:"meter_room_id"`
	RoomDisplayName string    `json:"room_display_name"`
	RoomID          string    `json:"room_id"`
	BuildingID      string    `json:"building_id"`
	CampusID        string    `json:"campus_id"`
	RoomNumber      string    `json:"room_number"`
	CapturedAt      time.Time `json:"captured_at"`
}
