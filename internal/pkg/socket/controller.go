package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pouyadh/chat-app-server/internal/infrastructure/realtime"
	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	userservice "github.com/pouyadh/chat-app-server/internal/pkg/user/service"
)

const (
	readTimeout    = 60 * time.Second
	handlerTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cookie auth gates the upgrade; cross-origin pages cannot read the
		// token, so any origin may connect.
		return true
	},
}

// requestFrame is one inbound call: a service/method pair with its argument
// and a client-chosen correlation id.
type requestFrame struct {
	Service string          `json:"service"`
	Method  string          `json:"method"`
	Arg     json.RawMessage `json:"arg"`
	CallID  string          `json:"callId"`
}

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type responseFrame struct {
	CallID string     `json:"callId"`
	Result any        `json:"result,omitempty"`
	Error  *errorBody `json:"error,omitempty"`
}

// Controller owns the websocket endpoint: it authenticates the upgrade,
// registers the session, joins the user's chat rooms and serves call frames
// until the client disconnects.
type Controller struct {
	router     *realtime.Router
	users      *userservice.UserService
	dispatcher *Dispatcher
	log        *logrus.Logger
}

func NewController(router *realtime.Router, users *userservice.UserService, dispatcher *Dispatcher, log *logrus.Logger) *Controller {
	return &Controller{
		router:     router,
		users:      users,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Handle upgrades the HTTP request and runs the session read loop.
func (ctl *Controller) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := c.Cookie("accessToken")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
			return
		}
		identity, err := ctl.users.ResolveIdentity(accessToken)
		if err != nil {
			c.JSON(apperror.StatusOf(err), gin.H{"error": "invalid access token"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(identity.ID, identity.Username, ws)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			ctl.log.WithField("username", identity.Username).Info("socket disconnected")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(readTimeout))
		})

		// Fetching the document sweeps private chats to delivered and tells
		// us which rooms this session belongs in.
		u, err := ctl.users.GetUserData(c.Request.Context(), identity.ID)
		if err != nil {
			// Account deleted while its access token was still valid.
			ctl.log.WithError(err).WithField("userId", identity.ID).Warn("socket: rejecting session for unknown user")
			return
		}
		for _, id := range u.GroupChats {
			ctl.router.JoinConn(id, conn)
		}
		for _, id := range u.Channels {
			ctl.router.JoinConn(id, conn)
		}

		ctl.log.WithField("username", identity.Username).Info("socket connected")

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

			var frame requestFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.reply(conn, responseFrame{Error: &errorBody{
					Status:  http.StatusBadRequest,
					Message: "malformed frame",
				}})
				continue
			}
			ctl.serve(c.Request.Context(), conn, identity.ID, frame)
		}
	}
}

func (ctl *Controller) serve(ctx context.Context, conn *realtime.Connection, callerID string, frame requestFrame) {
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	resp := responseFrame{CallID: frame.CallID}
	result, err := ctl.dispatcher.Dispatch(ctx, callerID, frame.Service, frame.Method, frame.Arg)
	if err != nil {
		var ae *apperror.Error
		if errors.As(err, &ae) {
			resp.Error = &errorBody{Status: ae.Status, Message: ae.Message}
		} else {
			ctl.log.WithError(err).WithFields(logrus.Fields{
				"service": frame.Service,
				"method":  frame.Method,
			}).Error("socket: handler failed")
			resp.Error = &errorBody{Status: http.StatusInternalServerError, Message: "internal error"}
		}
	} else {
		resp.Result = result
	}
	ctl.reply(conn, resp)
}

func (ctl *Controller) reply(conn *realtime.Connection, resp responseFrame) {
	payload, err := json.Marshal(resp)
	if err != nil {
		ctl.log.WithError(err).Error("socket: encode response")
		return
	}
	_ = conn.Send(payload)
}
