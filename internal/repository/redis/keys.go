package redis

import "fmt"

const ns = "deskgo:v1"

func KeyBuildings() string {
	return ns + ":buildings"
}

func KeyBuildingFloors(buildingID int64) string {
	return fmt.Sprintf("%s:building:%d:floors", ns, buildingID)
}

func KeyFloor(buildingID int64, number int) string {
	return fmt.Sprintf("%s:building:%d:floor:%d", ns, buildingID, number)
}

func KeyFloorSeats(floorID int64) string {
	return fmt.Sprintf("%s:floor:%d:seats", ns, floorID)
}

func KeySeat(seatID int64) string {
	return fmt.Sprintf("%s:seat:%d", ns, seatID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyLock(name string) string {
	return fmt.Sprintf("%s:lock:%s", ns, name)
}

func ChannelSeatsChanged() string {
	return ns + ":seats:changed"
}
