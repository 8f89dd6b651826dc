package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/1t0t0/dispatch-go/internal/service"
	"github.com/1t0t0/dispatch-go/internal/service/query"
	"github.com/1t0t0/dispatch-go/internal/service/scan"
	"github.com/1t0t0/dispatch-go/internal/service/trip"
	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	redisrepo "github.com/1t0t0/dispatch-go/internal/repository/redis"
)

const roleDriver = "driver"

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	jwtSecret string,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Driver API: the caller identity in the token is the trip's driver.
	driver := r.Group("/driver", RequireRole(jwtSecret, roleDriver))
	{
		driver.POST("/trips", handleStartTrip(svcs))
		driver.POST("/trips/close", handleCloseTrip(svcs))
		driver.GET("/trips/active", handleActiveTrip(svcs))
		driver.POST("/trips/scan", handleScan(svcs, idem))
	}

	// Staff API
	staff := r.Group("/", RequireRole(jwtSecret))
	{
		staff.GET("/trips/:id/scans", handleListScans(svcs))
		staff.GET("/tickets/:number/qr", handleTicketQR(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Start today's trip for the calling driver
// @Param    req body  StartTripRequest true "payload"
// @Success  201 {object} TripResponse
// @Failure  404 {object} ErrorResponse "driver or vehicle not found"
// @Failure  409 {object} ErrorResponse "active trip already exists"
// @Router   /driver/trips [post]
func handleStartTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartTripRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Trip.StartTrip(c.Request.Context(), c.GetInt64(ctxUserID), req.VehicleID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, newTripResponse(t))
	}
}

// @Summary  Close the calling driver's active trip
// @Success  200 {object} TripResponse
// @Failure  409 {object} ErrorResponse "no active trip"
// @Router   /driver/trips/close [post]
func handleCloseTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := svcs.Trip.CloseTrip(c.Request.Context(), c.GetInt64(ctxUserID))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, newTripResponse(t))
	}
}

// @Summary  Progress snapshot of the calling driver's active trip
// @Success  200 {object} ProgressResponse
// @Failure  409 {object} ErrorResponse "no active trip"
// @Router   /driver/trips/active [get]
func handleActiveTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svcs.Query.ActiveTripProgress(c.Request.Context(), c.GetInt64(ctxUserID))
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 5s
		writeJSONWithCache(c, http.StatusOK, newProgressResponse(p), "private, max-age=5", true)
	}
}

// @Summary  Scan a ticket against the calling driver's active trip (idempotent)
// @Param    req body  ScanRequest true "payload"
// @Header   200 {string} Idempotency-Key "echo"
// @Success  200 {object} ScanResponse
// @Failure  400 {object} ErrorResponse "empty or unparseable ticket code"
// @Failure  404 {object} ErrorResponse "ticket not found"
// @Failure  409 {object} ErrorResponse "no active trip / already scanned / capacity exceeded"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /driver/trips/scan [post]
func handleScan(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		driverID := c.GetInt64(ctxUserID)

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemScan(driverID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusOK,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusOK,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{
					ErrorKind: "idempotency_in_progress",
					Message:   "idempotency key in progress",
				})
				return
			}
		}

		rlKey := "driver:" + strconv.FormatInt(driverID, 10)

		res, err := svcs.Scan.Scan(
			c.Request.Context(),
			driverID,
			req.TicketCode,
			req.RawPayload,
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := newScanResponse(res)

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  List a trip's scan records in passenger order
// @Param    id  path  int  true  "Trip ID"
// @Success  200 {array}  ScanEntry
// @Failure  404 {object} ErrorResponse "trip not found"
// @Router   /trips/{id}/scans [get]
func handleListScans(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		scans, err := svcs.Query.ListScans(c.Request.Context(), tripID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, newScanEntries(scans), "private, max-age=15", true)
	}
}

// @Summary  Render a ticket's scannable code as PNG
// @Param    number  path  string  true  "Ticket number"
// @Produce  png
// @Success  200 {string} binary
// @Failure  404 {object} ErrorResponse "ticket not found"
// @Router   /tickets/{number}/qr [get]
func handleTicketQR(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := svcs.Query.TicketByNumber(c.Request.Context(), c.Param("number"))
		if err != nil {
			respondErr(c, err)
			return
		}

		payload, err := scan.EncodeTicketPayload(t)
		if err != nil {
			respondErr(c, err)
			return
		}

		png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Data(http.StatusOK, "image/png", png)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		ErrorKind: "validation_error",
		Message:   msg,
	})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var scanned *scan.AlreadyScannedError
	if errors.As(err, &scanned) {
		c.JSON(http.StatusConflict, ErrorResponse{
			ErrorKind: "already_scanned",
			Message:   scanned.Error(),
			Details: &ScanConflict{
				ScannedAt:     scanned.ScannedAt,
				ConsumingTrip: scanned.TripNumber,
				ConsumingDriver: DriverInfo{
					Name:       scanned.DriverName,
					EmployeeID: scanned.DriverEmployee,
				},
			},
		})
		return
	}

	var full *scan.CapacityExceededError
	if errors.As(err, &full) {
		c.JSON(http.StatusConflict, ErrorResponse{
			ErrorKind: "capacity_exceeded",
			Message:   full.Error(),
		})
		return
	}

	var limited *scan.RateLimitedError
	if errors.As(err, &limited) {
		c.Header("Retry-After", strconv.Itoa(int(limited.RetryAfter.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			ErrorKind: "rate_limited",
			Message:   limited.Error(),
		})
		return
	}

	switch {
	// scan service
	case errors.Is(err, scan.ErrEmptyTicketCode):
		badRequest(c, "ticket code is empty")
		return
	case errors.Is(err, scan.ErrNoActiveTrip),
		errors.Is(err, trip.ErrNoActiveTrip),
		errors.Is(err, query.ErrNoActiveTrip):
		c.JSON(http.StatusConflict, ErrorResponse{
			ErrorKind: "no_active_trip",
			Message:   "start a trip before scanning",
		})
		return
	case errors.Is(err, scan.ErrTicketNotFound), errors.Is(err, query.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			ErrorKind: "ticket_not_found",
			Message:   "no ticket with that number",
		})
		return
	// trip service
	case errors.Is(err, trip.ErrActiveTripExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			ErrorKind: "active_trip_exists",
			Message:   "driver already has an active trip today",
		})
		return
	case errors.Is(err, trip.ErrDriverNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			ErrorKind: "driver_not_found",
			Message:   "driver not found",
		})
		return
	case errors.Is(err, trip.ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			ErrorKind: "vehicle_not_found",
			Message:   "vehicle not found",
		})
		return
	// query service
	case errors.Is(err, query.ErrTripNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			ErrorKind: "trip_not_found",
			Message:   "trip not found",
		})
		return
	}

	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		ErrorKind: "storage_unavailable",
		Message:   "temporary storage failure, retry the request",
	})
}
