package tool

import (
	"context"
	"encoding/json"
	"strings"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
	"parts-assistant/internal/infrastructure/tracking"
)

var _ output.ToolPort = (*TrackDeliveryTool)(nil)

// TrackDeliveryTool looks up one delivery order and normalizes the
// provider's job object into the shape the chat UI renders.
type TrackDeliveryTool struct {
	client *tracking.Client
	logger output.LoggerPort
}

func NewTrackDeliveryTool(client *tracking.Client, logger output.LoggerPort) *TrackDeliveryTool {
	return &TrackDeliveryTool{
		client: client,
		logger: logger,
	}
}

func (t *TrackDeliveryTool) Name() string {
	return entity.ToolTrackDelivery.String()
}

func (t *TrackDeliveryTool) Description() string {
	return "Track a delivery by its delivery order (DO) number. Returns status, ETA, recipient, delivery address, items and proof of delivery."
}

func (t *TrackDeliveryTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"do_number": map[string]interface{}{
				"type":        "string",
				"description": "The delivery order number to track, e.g. \"DO-12345\".",
			},
		},
		"required": []string{"do_number"},
	}
}

func (t *TrackDeliveryTool) Call(ctx context.Context, input string) (string, error) {
	var args struct {
		DONumber string `json:"do_number"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return encodeResult(entity.DeliveryResult{Success: false, Error: "invalid arguments: " + err.Error()}), nil
	}
	doNumber := strings.TrimSpace(args.DONumber)
	if doNumber == "" {
		return encodeResult(entity.DeliveryResult{Success: false, Error: "do_number is required"}), nil
	}

	job, err := t.client.GetJob(ctx, doNumber)
	if err != nil {
		t.logger.Warn("delivery lookup failed", "doNumber", doNumber, "error", err.Error())
		return encodeResult(entity.DeliveryResult{Success: false, DONumber: doNumber, Error: err.Error()}), nil
	}

	result := entity.DeliveryResult{
		Success:         true,
		DONumber:        job.DONumber,
		Status:          job.PrimaryJobStatus,
		TrackingNumber:  job.TrackingNumber,
		ETA:             job.ETATime,
		Recipient:       job.DeliverToCollectFrom,
		DeliveryAddress: job.Address,
	}
	if result.DONumber == "" {
		result.DONumber = doNumber
	}
	// A live ETA beats the static one when the provider has it.
	if job.LiveETA != "" {
		result.ETA = job.LiveETA
	}

	for _, item := range job.Items {
		result.Items = append(result.Items, entity.DeliveryItem{
			SKU:         item.SKU,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}

	if photos := job.PhotoURLs(); job.SignatureFileURL != "" || len(photos) > 0 {
		result.ProofOfDelivery = &entity.ProofOfDelivery{
			SignatureURL: job.SignatureFileURL,
			Photos:       photos,
		}
	}

	for _, m := range job.Milestones {
		at := m.PodAt
		if at == "" {
			at = m.CreatedAt
		}
		result.StatusHistory = append(result.StatusHistory, entity.StatusEvent{
			Status: m.Status,
			At:     at,
		})
	}

	return encodeResult(result), nil
}
