package redis

import "fmt"

const ns = "dispatch:v1"

func KeyDriverActiveTrip(driverID int64) string {
	return fmt.Sprintf("%s:driver:%d:active_trip", ns, driverID)
}

func KeyTripScans(tripID int64) string {
	return fmt.Sprintf("%s:trip:%d:scans", ns, tripID)
}

func ChannelTripsChanged() string {
	return ns + ":trips:changed"
}
