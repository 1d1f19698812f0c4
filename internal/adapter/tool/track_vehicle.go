package tool

import (
	"context"
	"encoding/json"
	"strconv"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
	"parts-assistant/internal/infrastructure/tracking"
)

var _ output.ToolPort = (*TrackVehicleTool)(nil)

// TrackVehicleTool locates a batch of vehicles in one provider call. The
// outer result is success whenever the batch call itself worked; individual
// vehicles that could not be located carry their own success:false entry.
type TrackVehicleTool struct {
	client *tracking.Client
	logger output.LoggerPort
}

func NewTrackVehicleTool(client *tracking.Client, logger output.LoggerPort) *TrackVehicleTool {
	return &TrackVehicleTool{
		client: client,
		logger: logger,
	}
}

func (t *TrackVehicleTool) Name() string {
	return entity.ToolTrackVehicle.String()
}

func (t *TrackVehicleTool) Description() string {
	return "Track the current location of one or more delivery vehicles by name. Returns GPS coordinates, address, speed, battery and a Google Maps link per vehicle."
}

func (t *TrackVehicleTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"vehicle_names": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Names of the vehicles to locate, exactly as registered with the tracking provider.",
			},
		},
		"required": []string{"vehicle_names"},
	}
}

func (t *TrackVehicleTool) Call(ctx context.Context, input string) (string, error) {
	var args struct {
		VehicleNames []string `json:"vehicle_names"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return encodeResult(entity.VehicleBatchResult{Success: false, Error: "invalid arguments: " + err.Error()}), nil
	}
	if len(args.VehicleNames) == 0 {
		return encodeResult(entity.VehicleBatchResult{Success: false, Error: "at least one vehicle name is required"}), nil
	}

	vehicles, err := t.client.ViewVehiclesBatch(ctx, args.VehicleNames)
	if err != nil {
		t.logger.Warn("vehicle batch lookup failed", "error", err.Error())
		return encodeResult(entity.VehicleBatchResult{Success: false, Error: err.Error()}), nil
	}

	result := entity.VehicleBatchResult{
		Success: true,
		Results: make([]entity.TrackedVehicle, 0, len(vehicles)),
	}
	for _, v := range vehicles {
		result.Results = append(result.Results, normalizeVehicle(v))
	}

	return encodeResult(result), nil
}

func normalizeVehicle(v tracking.Vehicle) entity.TrackedVehicle {
	if v.Status != "ok" || v.NoGPS {
		errMsg := "GPS unavailable"
		if len(v.Errors) > 0 && v.Errors[0].Message != "" {
			errMsg = v.Errors[0].Message
		}
		return entity.TrackedVehicle{
			Success: false,
			Name:    v.Name,
			Error:   errMsg,
		}
	}

	return entity.TrackedVehicle{
		Success:       true,
		Name:          v.Name,
		Lat:           v.Lat,
		Lng:           v.Lng,
		Address:       v.Address,
		Battery:       v.Battery,
		Speed:         v.Speed,
		MaxSpeed:      v.MaxSpeed,
		AvgSpeed:      v.AvgSpeed,
		TrackedAt:     v.TrackedAt,
		Connection:    v.Connection,
		GoogleMapsURL: googleMapsURL(v.Lat, v.Lng),
	}
}

// googleMapsURL is built deterministically from the coordinates so the UI
// can link straight to the position.
func googleMapsURL(lat, lng float64) string {
	return "https://www.google.com/maps?q=" +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(lng, 'f', -1, 64)
}
