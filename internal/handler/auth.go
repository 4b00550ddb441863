package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/barbergo/loyalty-wheel/internal/config"
    "github.com/barbergo/loyalty-wheel/internal/model"
    "github.com/barbergo/loyalty-wheel/internal/repository"
    "github.com/barbergo/loyalty-wheel/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.  Registration is
// shop-aware: admins create their barbershop in the same call, and
// customers join an existing shop by slug, so every issued token
// carries a shop claim from the start.
type AuthHandler struct {
    Cfg       config.Config
    Users     *repository.UserRepo
    Tokens    *repository.TokenRepo
    Shops     *repository.BarbershopRepo
    Customers *repository.CustomerRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, s *repository.BarbershopRepo, c *repository.CustomerRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Shops: s, Customers: c}
}

// ----- DTOs -----

type registerReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"` // CUSTOMER | ADMIN

    // customer registration
    ShopSlug   string `json:"shop_slug"`
    Name       string `json:"name"`
    Subscriber bool   `json:"subscriber"`

    // admin registration (creates the shop)
    ShopName       string `json:"shop_name"`
    ContactChannel string `json:"contact_channel"`
    ValidityDays   int    `json:"validity_days"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID     uint64 `json:"id"`
    Email  string `json:"email"`
    Role   string `json:"role"`
    ShopID uint64 `json:"shop_id"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// claimsFor rebuilds the token claims for a user from storage.  Admins
// are bound to the shop they own; customers to the shop they joined at
// registration, along with their subscriber flag.
func (h *AuthHandler) claimsFor(ctx context.Context, u model.User) (utils.Claims, error) {
    cl := utils.Claims{UserID: u.ID, Role: u.Role}
    switch u.Role {
    case "ADMIN":
        shop, err := h.Shops.GetByOwner(ctx, u.ID)
        if err != nil {
            return utils.Claims{}, err
        }
        cl.ShopID = shop.ID
    case "CUSTOMER":
        prof, err := h.Customers.GetByUser(ctx, u.ID)
        if err != nil {
            return utils.Claims{}, err
        }
        cl.ShopID = prof.BarbershopID
        cl.Subscriber = prof.IsSubscriber
    }
    return cl, nil
}

func (h *AuthHandler) issuePair(ctx context.Context, cl utils.Claims) (utils.AccessToken, utils.RefreshToken, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, cl, h.Cfg.AccessTTLMin)
    if err != nil {
        return utils.AccessToken{}, utils.RefreshToken{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return utils.AccessToken{}, utils.RefreshToken{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, cl.UserID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return utils.AccessToken{}, utils.RefreshToken{}, err
    }
    return access, refresh, nil
}

// Register creates an account and returns tokens immediately.  An ADMIN
// registration also creates the barbershop; a CUSTOMER registration
// joins an existing shop by slug and records the subscriber flag, which
// decides the prize pool all their draws read from.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }
    role := strings.ToUpper(strings.TrimSpace(req.Role))
    if role != "ADMIN" && role != "CUSTOMER" {
        role = "CUSTOMER"
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    var shopID uint64
    var subscriber bool

    if role == "CUSTOMER" {
        if strings.TrimSpace(req.ShopSlug) == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "shop_slug required"})
        }
        shop, err := h.Shops.GetBySlug(ctx, req.ShopSlug)
        if err != nil {
            if err == repository.ErrShopNotFound {
                return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        shopID = shop.ID
        subscriber = req.Subscriber
    } else {
        if strings.TrimSpace(req.ShopName) == "" || strings.TrimSpace(req.ShopSlug) == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "shop_name/shop_slug required"})
        }
    }

    uid, err := h.Users.Create(ctx, req.Email, req.Password, role, h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    if role == "ADMIN" {
        shop := model.Barbershop{
            OwnerID:        uid,
            Name:           strings.TrimSpace(req.ShopName),
            Slug:           req.ShopSlug,
            ContactChannel: strings.TrimSpace(req.ContactChannel),
            ValidityDays:   req.ValidityDays,
        }
        if err := h.Shops.Create(ctx, &shop); err != nil {
            if err == repository.ErrSlugExists {
                return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create shop failed"})
        }
        shopID = shop.ID
    } else {
        prof := model.Customer{
            UserID:       uid,
            BarbershopID: shopID,
            Name:         strings.TrimSpace(req.Name),
            IsSubscriber: subscriber,
        }
        if err := h.Customers.Create(ctx, &prof); err != nil {
            if err == repository.ErrAlreadyRegistered {
                return c.JSON(http.StatusConflict, echo.Map{"error": "already registered at this shop"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create customer failed"})
        }
    }

    cl := utils.Claims{UserID: uid, Role: role, ShopID: shopID, Subscriber: subscriber}
    access, refresh, err := h.issuePair(ctx, cl)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }

    return c.JSON(http.StatusCreated, authResp{
        User:    userPart{ID: uid, Email: req.Email, Role: role, ShopID: shopID},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    })
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    cl, err := h.claimsFor(ctx, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
    }
    access, refresh, err := h.issuePair(ctx, cl)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role, ShopID: cl.ShopID},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    raw := strings.TrimSpace(req.RefreshToken)
    hash := utils.HashRefreshRaw(raw)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    _ = h.Tokens.RevokeByHash(ctx, hash)

    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    cl, err := h.claimsFor(ctx, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
    }
    access, refresh, err := h.issuePair(ctx, cl)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        User:    userPart{ID: userID, Email: u.Email, Role: u.Role, ShopID: cl.ShopID},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}

// RefreshAccess: validate a refresh token and return a new access token
// WITHOUT rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    raw := strings.TrimSpace(req.RefreshToken)
    hash := utils.HashRefreshRaw(raw)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    cl, err := h.claimsFor(ctx, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, cl, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    // Only a new access token; the refresh token is not rotated.
    return c.JSON(http.StatusOK, echo.Map{
        "access": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Logout revokes sessions.  With a bearer token and no body it revokes
// every refresh token of the user (log out everywhere); with a
// refresh_token in the body it revokes that single session.  The route
// is unprotected so a client with only a refresh token can still log
// out.
func (h *AuthHandler) Logout(c echo.Context) error {
    var uid uint64
    hasBearer := false
    authHeader := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(authHeader, "Bearer ") {
        rawToken := strings.TrimPrefix(authHeader, "Bearer ")
        tok, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
            if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                return nil, echo.ErrUnauthorized
            }
            return []byte(h.Cfg.JWTSecret), nil
        })
        if err == nil && tok.Valid {
            if claims, ok := tok.Claims.(jwt.MapClaims); ok {
                switch subVal := claims["sub"].(type) {
                case float64:
                    uid = uint64(subVal)
                    hasBearer = true
                case string:
                    if parsed, err := strconv.ParseUint(subVal, 10, 64); err == nil {
                        uid = parsed
                        hasBearer = true
                    }
                }
            }
        }
    }

    var req refreshReq
    _ = c.Bind(&req)
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if hasBearer && refreshToken == "" {
        if uid == 0 {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
        return c.NoContent(http.StatusNoContent)
    }
    if refreshToken != "" {
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
        return c.NoContent(http.StatusNoContent)
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "user_id":    c.Get("user_id"),
        "role":       c.Get("role"),
        "shop_id":    c.Get("shop_id"),
        "subscriber": c.Get("subscriber"),
    })
}
