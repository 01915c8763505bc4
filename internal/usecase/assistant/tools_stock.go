package assistant

import (
	"context"
	"errors"

	"voltway/internal/ports"
)

type partArgs struct {
	PartID string `json:"part_id" jsonschema:"description=Part identifier such as P323"`
}

type thresholdArgs struct {
	Threshold int `json:"threshold,omitempty" jsonschema:"description=Override the configured low-stock threshold"`
}

type modelArgs struct {
	Model string `json:"model" jsonschema:"description=Scooter model such as S2_V2"`
}

type emptyArgs struct{}

func (s *Service) stockStatusTool() (tool, error) {
	return newTool("get_stock_status",
		"Current quantity and hold status for one part.",
		func(ctx context.Context, args partArgs) (any, error) {
			record, err := s.stock.GetPart(ctx, args.PartID)
			if err != nil {
				if errors.Is(err, ports.ErrPartNotFound) {
					return map[string]any{"found": false, "part_id": args.PartID}, nil
				}
				return nil, err
			}
			return record, nil
		})
}

func (s *Service) lowStockAlertsTool() (tool, error) {
	return newTool("get_low_stock_alerts",
		"Parts whose on-hand quantity is below the low-stock threshold.",
		func(ctx context.Context, args thresholdArgs) (any, error) {
			threshold := args.Threshold
			if threshold <= 0 {
				threshold = s.opts.LowStockThreshold
			}
			records, err := s.stock.ListBelow(ctx, threshold)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"threshold": threshold,
				"parts":     records,
			}, nil
		})
}

func (s *Service) stockSummaryTool() (tool, error) {
	return newTool("get_stock_summary",
		"Aggregate stock position: part count, total units, holds, low-stock count.",
		func(ctx context.Context, _ emptyArgs) (any, error) {
			return s.stock.Summarize(ctx, s.opts.LowStockThreshold)
		})
}

func (s *Service) stockByModelTool() (tool, error) {
	return newTool("get_stock_by_model",
		"Stock levels for every part on a scooter model's bill of materials.",
		func(ctx context.Context, args modelArgs) (any, error) {
			lines, err := s.bom.ListByModel(ctx, args.Model)
			if err != nil {
				if errors.Is(err, ports.ErrModelNotFound) {
					return map[string]any{"found": false, "model": args.Model}, nil
				}
				return nil, err
			}

			partIDs := make([]string, 0, len(lines))
			for _, line := range lines {
				partIDs = append(partIDs, line.PartID)
			}
			records, err := s.stock.ListParts(ctx, partIDs)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"model": args.Model,
				"bom":   lines,
				"stock": records,
			}, nil
		})
}

func (s *Service) partUsageTool() (tool, error) {
	return newTool("check_part_usage",
		"Which scooter models consume a part, and at what quantity per unit.",
		func(ctx context.Context, args partArgs) (any, error) {
			lines, err := s.bom.ListModelsUsingPart(ctx, args.PartID)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"part_id": args.PartID,
				"used_by": lines,
			}, nil
		})
}
