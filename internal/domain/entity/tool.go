package entity

type ToolName string

const (
	ToolSQLQuery         ToolName = "sqlQuery"
	ToolTrackDelivery    ToolName = "trackDelivery"
	ToolTrackVehicle     ToolName = "trackVehicle"
	ToolDriverDeliveries ToolName = "driverDeliveries"
)

func (t ToolName) String() string {
	return string(t)
}
