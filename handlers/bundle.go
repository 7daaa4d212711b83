package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle collects every route handler wired in main so route
// registration stays declarative.
type HandlerBundle struct {
	// Request lifecycle endpoints.
	CreateRequest  gin.HandlerFunc
	GetRequest     gin.HandlerFunc
	AcceptRequest  gin.HandlerFunc
	RejectRequest  gin.HandlerFunc
	UpdateStatus   gin.HandlerFunc
	UpdateLocation gin.HandlerFunc
	CancelRequest  gin.HandlerFunc
	GetTracking    gin.HandlerFunc

	// Provider directory endpoints.
	RegisterProvider gin.HandlerFunc
	GetProvider      gin.HandlerFunc

	// Admin endpoints.
	OverrideStatus gin.HandlerFunc
}
