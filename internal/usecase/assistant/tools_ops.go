package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voltway/internal/domain/planning"
	"voltway/internal/ports"
)

type checkFulfillmentArgs struct {
	Model      string `json:"model" jsonschema:"description=Scooter model such as S2_V2"`
	Quantity   int    `json:"quantity" jsonschema:"description=Units to build"`
	TargetDate string `json:"target_date" jsonschema:"description=Requested ship date, YYYY-MM-DD"`
}

type safetyStockArgs struct {
	PartID         string   `json:"part_id,omitempty" jsonschema:"description=Part to look up the supplier lead time for"`
	LeadTimeDays   float64  `json:"lead_time_days,omitempty" jsonschema:"description=Replenishment lead time in days; derived from the part's supplier when omitted"`
	AvgDailyDemand float64  `json:"avg_daily_demand" jsonschema:"description=Average consumption per day in units"`
	DemandStdDev   *float64 `json:"demand_std_dev,omitempty" jsonschema:"description=Measured demand standard deviation; estimated when omitted"`
}

func (s *Service) checkFulfillmentTool() (tool, error) {
	return newTool("check_fulfillment",
		"Whether an order for a model can be built from current non-hold stock, accounting for earlier commitments.",
		func(ctx context.Context, args checkFulfillmentArgs) (any, error) {
			target, err := time.Parse("2006-01-02", args.TargetDate)
			if err != nil {
				return nil, &ToolArgumentError{Tool: "check_fulfillment", Reason: fmt.Sprintf("target_date: %v", err)}
			}

			lines, err := s.bom.ListByModel(ctx, args.Model)
			if err != nil {
				if errors.Is(err, ports.ErrModelNotFound) {
					return map[string]any{"found": false, "model": args.Model}, nil
				}
				return nil, err
			}

			partIDs := make([]string, 0, len(lines))
			bom := make([]planning.BOMLine, 0, len(lines))
			for _, line := range lines {
				partIDs = append(partIDs, line.PartID)
				bom = append(bom, planning.BOMLine{
					PartID:     line.PartID,
					PartName:   line.PartName,
					QtyPerUnit: line.QtyPerUnit,
				})
			}

			records, err := s.stock.ListParts(ctx, partIDs)
			if err != nil {
				return nil, err
			}
			stock := make(map[string]planning.StockSnapshot, len(records))
			for _, record := range records {
				stock[record.PartID] = planning.StockSnapshot{
					PartID:   record.PartID,
					Quantity: record.Quantity,
					OnHold:   record.Status == ports.StockStatusHold,
				}
			}

			reserved, err := s.reservedParts(ctx, target)
			if err != nil {
				return nil, err
			}

			result, err := planning.CheckFulfillment(planning.FulfillmentInput{
				Today:      s.now().UTC().Truncate(24 * time.Hour),
				TargetDate: target,
				Model:      args.Model,
				Quantity:   args.Quantity,
				BOM:        bom,
				Stock:      stock,
				Reserved:   reserved,
			})
			if err != nil {
				if errors.Is(err, planning.ErrValidation) {
					return nil, &ToolArgumentError{Tool: "check_fulfillment", Reason: err.Error()}
				}
				return nil, err
			}
			return result, nil
		})
}

// reservedParts expands every open sales order due before the cutoff into its
// per-part demand. Those units are spoken for and must not be promised twice.
func (s *Service) reservedParts(ctx context.Context, cutoff time.Time) (map[string]int, error) {
	orders, err := s.orders.ListOpenSalesOrdersBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	reserved := make(map[string]int)
	bomByModel := make(map[string][]ports.BOMLineRecord)
	for _, order := range orders {
		lines, ok := bomByModel[order.Model]
		if !ok {
			lines, err = s.bom.ListByModel(ctx, order.Model)
			if err != nil {
				if errors.Is(err, ports.ErrModelNotFound) {
					continue
				}
				return nil, err
			}
			bomByModel[order.Model] = lines
		}
		for _, line := range lines {
			reserved[line.PartID] += line.QtyPerUnit * order.Quantity
		}
	}
	return reserved, nil
}

func (s *Service) safetyStockTool() (tool, error) {
	return newTool("calculate_safety_stock",
		"Recommended buffer stock for a part given lead time and daily demand.",
		func(ctx context.Context, args safetyStockArgs) (any, error) {
			leadTime := args.LeadTimeDays
			if leadTime <= 0 && args.PartID != "" {
				derived, err := s.supplierLeadTime(ctx, args.PartID)
				if err != nil {
					return nil, err
				}
				leadTime = derived
			}

			required, err := planning.SafetyStock(planning.SafetyStockInput{
				LeadTimeDays:       leadTime,
				AverageDailyDemand: args.AvgDailyDemand,
				DemandStdDev:       args.DemandStdDev,
				ServiceLevelZ:      s.opts.ServiceLevelZ,
				SigmaCoefficient:   s.opts.SigmaCoefficient,
			})
			if err != nil {
				if errors.Is(err, planning.ErrValidation) {
					return nil, &ToolArgumentError{Tool: "calculate_safety_stock", Reason: err.Error()}
				}
				return nil, err
			}

			return map[string]any{
				"part_id":          args.PartID,
				"lead_time_days":   leadTime,
				"avg_daily_demand": args.AvgDailyDemand,
				"safety_stock":     required,
			}, nil
		})
}

// supplierLeadTime derives a part's lead time from its most recent material
// order's supplier.
func (s *Service) supplierLeadTime(ctx context.Context, partID string) (float64, error) {
	orders, err := s.orders.ListMaterialOrdersByPart(ctx, partID)
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, &ToolArgumentError{
			Tool:   "calculate_safety_stock",
			Reason: fmt.Sprintf("no orders for part %s; pass lead_time_days explicitly", partID),
		}
	}

	supplier, err := s.orders.GetSupplier(ctx, orders[len(orders)-1].SupplierID)
	if err != nil {
		return 0, err
	}
	return float64(supplier.LeadTimeDays), nil
}
