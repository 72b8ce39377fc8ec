package utils

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action       string             `bson:"action" json:"action"`
	UserID       string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	MobileNumber string             `bson:"mobile_number,omitempty" json:"mobile_number,omitempty"`
	Resource     string             `bson:"resource,omitempty" json:"resource,omitempty"`
	Success      bool               `bson:"success" json:"success"`
	Details      string             `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress    string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent    string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID    string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}

// Audit action constants
const (
	AuditActionOTPRequested     = "OTP_REQUESTED"
	AuditActionOTPVerifyFailed  = "OTP_VERIFY_FAILED"
	AuditActionOTPVerified      = "OTP_VERIFIED"
	AuditActionLoginSuccess     = "LOGIN_SUCCESS"
	AuditActionRegistration     = "REGISTRATION_SUCCESS"
	AuditActionFlowCancelled    = "FLOW_CANCELLED"
	AuditActionProfileUpdate    = "PROFILE_UPDATE"
	AuditActionSummaryDownload  = "SUMMARY_DOWNLOAD"
)

// AuditContext carries request metadata into audit entries
type AuditContext struct {
	UserID    string
	IPAddress string
	UserAgent string
	RequestID string
}

// GetAuditContextFromGin extracts audit metadata from a gin request
func GetAuditContextFromGin(c *gin.Context) AuditContext {
	requestID, _ := c.Get("RequestID")
	rid, _ := requestID.(string)
	return AuditContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: rid,
	}
}

// AuditWorker manages asynchronous, batched audit logging
type AuditWorker struct {
	auditChan  chan AuditLog
	collection *mongo.Collection
	workers    int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

var (
	auditWorker *AuditWorker
	auditOnce   sync.Once
)

// InitAuditWorker initializes the global audit worker
func InitAuditWorker(collection *mongo.Collection, workers, bufferSize int) {
	auditOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		auditWorker = &AuditWorker{
			auditChan:  make(chan AuditLog, bufferSize),
			collection: collection,
			workers:    workers,
			ctx:        ctx,
			cancel:     cancel,
		}
		auditWorker.start()
	})
}

func (aw *AuditWorker) start() {
	aw.wg.Add(aw.workers)
	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	logging.Logger.Info("audit worker started",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

// processAuditLogs drains the channel in batches to amortize inserts
func (aw *AuditWorker) processAuditLogs() {
	const batchSize = 50
	const flushInterval = 2 * time.Second

	batch := make([]interface{}, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := aw.collection.InsertMany(ctx, batch); err != nil {
			logging.Logger.Error("failed to write audit batch",
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case <-aw.ctx.Done():
			// Drain whatever is left before exiting
			for {
				select {
				case entry := <-aw.auditChan:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		case entry := <-aw.auditChan:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// ShutdownAuditWorker stops the workers and flushes pending entries
func ShutdownAuditWorker() {
	if auditWorker == nil {
		return
	}
	auditWorker.cancel()
	auditWorker.wg.Wait()
}

// LogAuthEvent enqueues an authentication audit entry; drops with a
// warning when the buffer is full rather than blocking the request.
func LogAuthEvent(actx AuditContext, action, userID, mobileNumber string, success bool, details string) {
	if auditWorker == nil {
		return
	}
	entry := AuditLog{
		Action:       action,
		UserID:       userID,
		MobileNumber: mobileNumber,
		Success:      success,
		Details:      details,
		IPAddress:    actx.IPAddress,
		UserAgent:    actx.UserAgent,
		RequestID:    actx.RequestID,
		Timestamp:    time.Now(),
	}
	select {
	case auditWorker.auditChan <- entry:
	default:
		logging.Logger.Warn("audit buffer full, dropping entry",
			zap.String("action", action))
	}
}

// LogProfileEvent enqueues a profile-change audit entry
func LogProfileEvent(actx AuditContext, userID, resource, details string) {
	if auditWorker == nil {
		return
	}
	entry := AuditLog{
		Action:    AuditActionProfileUpdate,
		UserID:    userID,
		Resource:  resource,
		Success:   true,
		Details:   details,
		IPAddress: actx.IPAddress,
		UserAgent: actx.UserAgent,
		RequestID: actx.RequestID,
		Timestamp: time.Now(),
	}
	select {
	case auditWorker.auditChan <- entry:
	default:
		logging.Logger.Warn("audit buffer full, dropping entry",
			zap.String("action", entry.Action))
	}
}
