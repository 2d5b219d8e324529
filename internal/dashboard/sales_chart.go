package dashboard

import (
	"fmt"
	"time"

	"inventario-backend/internal/database"
	"inventario-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SalesChartPoint struct {
	Label   string `json:"label"` // day / week start / month start
	Count   int64  `json:"count"`
	Revenue string `json:"revenue"`
}

type SalesChartResponse struct {
	Period       string            `json:"period"` // daily | weekly | monthly
	From         string            `json:"from"`
	To           string            `json:"to"`
	Points       []SalesChartPoint `json:"points"`
	TotalCount   int64             `json:"total_count"`
	TotalRevenue string            `json:"total_revenue"`
}

// GET /api/dashboard/sales-chart?period=daily&count=7
func SalesChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", "daily")
		countStr := c.Query("count", "")

		var count int
		if countStr == "" {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				period = "daily"
				count = 7
			}
		} else {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 || count > 60 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid count")
			}
		}

		now := time.Now()
		loc := now.Location()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

		// compute the bucket starts, oldest first
		starts := make([]time.Time, 0, count)
		switch period {
		case "weekly":
			// weeks start on Monday
			weekday := (int(today.Weekday()) + 6) % 7
			weekStart := today.AddDate(0, 0, -weekday)
			for i := count - 1; i >= 0; i-- {
				starts = append(starts, weekStart.AddDate(0, 0, -7*i))
			}
		case "monthly":
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			for i := count - 1; i >= 0; i-- {
				starts = append(starts, monthStart.AddDate(0, -i, 0))
			}
		case "daily":
			for i := count - 1; i >= 0; i-- {
				starts = append(starts, today.AddDate(0, 0, -i))
			}
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period must be daily, weekly or monthly")
		}

		bucketEnd := func(start time.Time) time.Time {
			switch period {
			case "weekly":
				return start.AddDate(0, 0, 7)
			case "monthly":
				return start.AddDate(0, 1, 0)
			default:
				return start.AddDate(0, 0, 1)
			}
		}

		points := make([]SalesChartPoint, 0, count)
		var totalCount int64
		totalRevenue := decimal.Zero

		for _, start := range starts {
			end := bucketEnd(start)

			var bucketCount int64
			if err := database.DB.Model(&models.Sale{}).
				Where("occurred_at >= ? AND occurred_at < ?", start, end).
				Count(&bucketCount).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not aggregate sales")
			}

			var revenue decimal.Decimal
			if err := database.DB.Model(&models.Sale{}).
				Select("COALESCE(SUM(total), 0)").
				Where("occurred_at >= ? AND occurred_at < ?", start, end).
				Scan(&revenue).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not aggregate sales")
			}

			points = append(points, SalesChartPoint{
				Label:   start.Format("2006-01-02"),
				Count:   bucketCount,
				Revenue: revenue.StringFixed(2),
			})
			totalCount += bucketCount
			totalRevenue = totalRevenue.Add(revenue)
		}

		return c.JSON(SalesChartResponse{
			Period:       period,
			From:         starts[0].Format("2006-01-02"),
			To:           bucketEnd(starts[len(starts)-1]).AddDate(0, 0, -1).Format("2006-01-02"),
			Points:       points,
			TotalCount:   totalCount,
			TotalRevenue: totalRevenue.StringFixed(2),
		})
	}
}
