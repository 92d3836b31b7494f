package daemon

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/cellentry/pkg/cell"
	"github.com/charlie0129/cellentry/pkg/config"
	"github.com/charlie0129/cellentry/pkg/events"
	"github.com/charlie0129/cellentry/pkg/session"
	"github.com/charlie0129/cellentry/pkg/table"
	"github.com/charlie0129/cellentry/pkg/types"
	"github.com/charlie0129/cellentry/pkg/version"
)

func abortWithError(c *gin.Context, code int, err error) {
	c.IndentedJSON(code, err.Error())
	_ = c.AbortWithError(code, err)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrCellNotFound):
		return http.StatusNotFound
	case errors.Is(err, cell.ErrInvalidCount), errors.Is(err, cell.ErrInvalidCurrent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// lookupSession aborts with 404 when the session does not exist.
func (s *Server) lookupSession(c *gin.Context) (*session.Session, bool) {
	id := c.Param("id")
	sess, ok := s.store.Get(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return nil, false
	}
	return sess, true
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func (s *Server) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(s.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (s *Server) setCarryOverCurrents(c *gin.Context) {
	var b bool
	if err := c.BindJSON(&b); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	s.conf.SetCarryOverCurrents(b)
	if err := s.conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set carry over currents to %t", b)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("carry over currents set to %t. Applies to the next registration of every session.", b))
}

func (s *Server) setDefaultCellCount(c *gin.Context) {
	var n int
	if err := c.BindJSON(&n); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	if err := cell.ValidateCount(n); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	s.conf.SetDefaultCellCount(n)
	if err := s.conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set default cell count to %d", n)

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.store.Create()
	c.IndentedJSON(http.StatusCreated, sessionInfo(sess))
}

func (s *Server) listSessions(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.store.IDs())
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, sessionInfo(sess))
}

func (s *Server) deleteSession(c *gin.Context) {
	id := c.Param("id")
	if !s.store.Delete(id) {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return
	}
	logrus.WithField("session", id).Info("session deleted")
	c.IndentedJSON(http.StatusOK, "ok")
}

func (s *Server) resetSession(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	sess.Reset()
	s.hub.Publish(sess.ID, events.SessionReset, map[string]any{"session": sess.ID, "ts": time.Now().Unix()})
	c.IndentedJSON(http.StatusOK, sessionInfo(sess))
}

// registerCells creates the session on first use so clients can pick a
// well-known session name.
func (s *Server) registerCells(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	// Out-of-range counts never reach the registry.
	if err := cell.ValidateCount(req.Count); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	sess := s.store.GetOrCreate(c.Param("id"))
	// Config changes made since the session was created apply here.
	sess.SetOptions(s.sessionOptions())
	cells, err := sess.Register(req.Labels, req.Count)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	keys := make([]string, 0, len(cells))
	for _, sp := range cells {
		keys = append(keys, sp.Key)
	}
	s.hub.Publish(sess.ID, events.CellsRegistered, events.CellsRegisteredEvent{
		Session: sess.ID,
		Keys:    keys,
		Ts:      time.Now().Unix(),
	})

	logrus.WithFields(logrus.Fields{
		"session": sess.ID,
		"cells":   len(cells),
	}).Info("registered cells")

	c.IndentedJSON(http.StatusCreated, cells)
}

func (s *Server) getCells(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, sess.Cells())
}

func (s *Server) getCell(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	sp, err := sess.Cell(c.Param("key"))
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.IndentedJSON(http.StatusOK, sp)
}

func (s *Server) setCurrent(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var current float64
	if err := c.BindJSON(&current); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	sp, err := sess.SetCurrent(c.Param("key"), current)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	s.hub.Publish(sess.ID, events.CellUpdated, events.CellUpdatedEvent{
		Session:  sess.ID,
		Key:      sp.Key,
		Current:  sp.Current,
		Capacity: sp.Capacity,
		Ts:       time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusOK, sp)
}

func (s *Server) getSummary(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, sess.Summary())
}

func (s *Server) exportCSV(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	b, err := table.CSV(sess.Cells())
	if err != nil {
		logrus.Errorf("exportCSV failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table.ExportFilename))
	c.Data(http.StatusOK, table.ExportContentType+"; charset=utf-8", b)
}

// streamEvents streams hub events as Server-Sent Events until the client
// goes away. The optional "session" query narrows the stream to one session.
func (s *Server) streamEvents(c *gin.Context) {
	ch := s.hub.Subscribe(c.Query("session"))
	defer s.hub.Unsubscribe(ch)

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func sessionInfo(sess *session.Session) *types.SessionInfo {
	return &types.SessionInfo{
		ID:     sess.ID,
		Phase:  string(sess.Phase()),
		Labels: sess.Labels(),
		Cells:  sess.Cells(),
	}
}
