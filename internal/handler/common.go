package handler // handler defines http handlers

import (
    "errors"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/barbergo/loyalty-wheel/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
    return ctxUint(c, "user_id")
}

// getShopID extracts the shop_id claim placed by the JWT middleware.
// Every admin and customer endpoint is scoped to this tenant.
func getShopID(c echo.Context) (uint64, error) {
    return ctxUint(c, "shop_id")
}

func ctxUint(c echo.Context, key string) (uint64, error) {
    v := c.Get(key)
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid " + key + " in context")
}

// playView is the JSON shape of a play across all endpoints.  Status is
// derived from the clock at render time, never read from storage.
type playView struct {
    ID          uint64     `json:"id"`
    Prize       prizePart  `json:"prize"`
    Status      string     `json:"status"`
    Month       string     `json:"month"`
    ExpiresAt   time.Time  `json:"expires_at"`
    RedeemedAt  *time.Time `json:"redeemed_at,omitempty"`
    CreatedAt   time.Time  `json:"created_at"`
    CustomerID  uint64     `json:"customer_id"`
}

type prizePart struct {
    ID          uint64 `json:"id"`
    Title       string `json:"title"`
    Description string `json:"description"`
    Code        string `json:"code"`
}

func toPlayView(p *model.Play, now time.Time) playView {
    return playView{
        ID: p.ID,
        Prize: prizePart{
            ID:          p.PrizeID,
            Title:       p.PrizeTitle,
            Description: p.PrizeDescription,
            Code:        p.PrizeCode,
        },
        Status:     p.Status(now),
        Month:      p.MonthKey,
        ExpiresAt:  p.ExpiresAt,
        RedeemedAt: p.RedeemedAt,
        CreatedAt:  p.CreatedAt,
        CustomerID: p.CustomerID,
    }
}
