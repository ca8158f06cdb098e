package middlewares

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dinehall/comanda/utils"
)

// Staff roles as supplied by the surrounding auth layer.
const (
	RoleWaiter  = "waiter"
	RoleKitchen = "kitchen"
	RoleAdmin   = "admin"
)

// StaffContext reads the pre-authorized caller identity from the
// X-Staff-ID and X-Staff-Role headers and puts it on the request context.
// Authentication itself happens upstream; this layer only requires that an
// identity is present and the role is recognized.
func StaffContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		idHeader := c.GetHeader("X-Staff-ID")
		role := c.GetHeader("X-Staff-Role")

		if idHeader == "" || role == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("staff identity headers missing"))
			c.Abort()
			return
		}

		staffID, err := strconv.ParseUint(idHeader, 10, 32)
		if err != nil || staffID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid staff id"))
			c.Abort()
			return
		}

		if role != RoleWaiter && role != RoleKitchen && role != RoleAdmin {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unknown staff role"))
			c.Abort()
			return
		}

		c.Set("staff_id", uint(staffID))
		c.Set("role", role)
		c.Next()
	}
}

// StaffID -> the caller's id previously set by StaffContext.
func StaffID(c *gin.Context) uint {
	if v, ok := c.Get("staff_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
