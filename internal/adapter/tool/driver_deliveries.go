package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
	"parts-assistant/internal/infrastructure/tracking"
)

var _ output.ToolPort = (*DriverDeliveriesTool)(nil)

// DriverDeliveriesTool lists the deliveries assigned to a driver for one
// day. The driver record maps the human name to the vehicle name the
// tracking provider keys jobs by.
type DriverDeliveriesTool struct {
	client  *tracking.Client
	drivers output.DriverStore
	logger  output.LoggerPort
	now     func() time.Time
}

func NewDriverDeliveriesTool(client *tracking.Client, drivers output.DriverStore, logger output.LoggerPort) *DriverDeliveriesTool {
	return &DriverDeliveriesTool{
		client:  client,
		drivers: drivers,
		logger:  logger,
		now:     time.Now,
	}
}

func (t *DriverDeliveriesTool) Name() string {
	return entity.ToolDriverDeliveries.String()
}

func (t *DriverDeliveriesTool) Description() string {
	return "List the deliveries assigned to a driver for a given date (defaults to today). Returns DO numbers, statuses, addresses and item summaries."
}

func (t *DriverDeliveriesTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"driver_name": map[string]interface{}{
				"type":        "string",
				"description": "The driver's name.",
			},
			"date": map[string]interface{}{
				"type":        "string",
				"description": "Date in YYYY-MM-DD format. Defaults to today.",
			},
		},
		"required": []string{"driver_name"},
	}
}

func (t *DriverDeliveriesTool) Call(ctx context.Context, input string) (string, error) {
	var args struct {
		DriverName string `json:"driver_name"`
		Date       string `json:"date"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return encodeResult(entity.DriverDeliveriesResult{Success: false, Error: "invalid arguments: " + err.Error()}), nil
	}
	driverName := strings.TrimSpace(args.DriverName)
	if driverName == "" {
		return encodeResult(entity.DriverDeliveriesResult{Success: false, Error: "driver_name is required"}), nil
	}

	driver, err := t.drivers.GetDriverByName(ctx, driverName)
	if err != nil {
		t.logger.Error("driver lookup failed", "driver", driverName, "error", err.Error())
		return encodeResult(entity.DriverDeliveriesResult{
			Success:    false,
			DriverName: driverName,
			Error:      "failed to look up driver",
		}), nil
	}
	if driver == nil {
		return encodeResult(entity.DriverDeliveriesResult{
			Success:    false,
			DriverName: driverName,
			Error:      fmt.Sprintf("no driver named %q is registered", driverName),
		}), nil
	}

	date := args.Date
	if date == "" {
		date = t.now().Format("2006-01-02")
	}

	jobs, err := t.client.ListJobs(ctx, date, driver.VehicleName)
	if err != nil {
		t.logger.Warn("driver deliveries lookup failed", "driver", driverName, "error", err.Error())
		return encodeResult(entity.DriverDeliveriesResult{
			Success:    false,
			DriverName: driver.Name,
			Error:      err.Error(),
		}), nil
	}

	result := entity.DriverDeliveriesResult{
		Success:       true,
		DriverName:    driver.Name,
		DeliveryCount: len(jobs),
		Deliveries:    make([]entity.DriverDelivery, 0, len(jobs)),
	}
	for _, job := range jobs {
		result.Deliveries = append(result.Deliveries, entity.DriverDelivery{
			DONumber:         job.DONumber,
			Status:           job.PrimaryJobStatus,
			CompanyName:      job.CompanyName,
			Address:          job.Address,
			Instructions:     job.Instructions,
			ItemsCount:       countItems(job.Items),
			Items:            summarizeItems(job.Items),
			VerificationCode: job.VerificationCode,
		})
	}

	return encodeResult(result), nil
}

func countItems(items []tracking.JobItem) int {
	total := 0
	for _, item := range items {
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		total += qty
	}
	return total
}

func summarizeItems(items []tracking.JobItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Description))
		} else {
			parts = append(parts, item.Description)
		}
	}
	return strings.Join(parts, "; ")
}
