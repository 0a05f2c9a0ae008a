package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/shiftmaze/shiftmaze/internal/model"
)

type ErrorsSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsSuite))
}

func (s *ErrorsSuite) TestToErrorMapsSentinels() {
	cases := []struct {
		err  error
		code string
	}{
		{model.ErrGameFull, CodeGameFull},
		{model.ErrInvalidStage, CodeInvalidStage},
		{model.ErrPlayerNotFound, CodePlayerNotFound},
		{model.ErrNotYourTurn, CodeNotYourTurn},
		{model.ErrAlreadyPushed, CodeAlreadyPushed},
		{model.ErrMustPushFirst, CodeMustPushFirst},
		{model.ErrInvalidMove, CodeInvalidMove},
		{model.ErrInvalidPushPosition, CodeInvalidPushPosition},
		{model.ErrIllegalReversePush, CodeIllegalReversePush},
		{model.ErrInvalidRotation, CodeInvalidRotation},
		{model.ErrInvalidShuffleLevel, CodeInvalidShuffleLevel},
		{model.ErrNotEnoughPlayers, CodeNotEnoughPlayers},
		{model.ErrNotAuthorized, CodeUnauthorized},
	}
	for _, c := range cases {
		s.Equal(c.code, ToError(c.err).Code)
	}
}

func (s *ErrorsSuite) TestToErrorUnwrapsWrappedSentinels() {
	err := fmt.Errorf("player %q: %w", "p1", model.ErrNotYourTurn)
	s.Equal(CodeNotYourTurn, ToError(err).Code)
}

func (s *ErrorsSuite) TestToErrorHidesUnknownErrors() {
	wireErr := ToError(errors.New("pq: connection refused"))
	s.Equal(CodeInternalError, wireErr.Code)
	s.NotContains(wireErr.Message, "connection refused")
}

func (s *ErrorsSuite) TestToErrorPassesThroughWireErrors() {
	err := NewUnknownMethodError("fly")
	wireErr := ToError(err)
	s.Equal(CodeUnknownMethod, wireErr.Code)
	s.Contains(wireErr.Message, "fly")
}

func (s *ErrorsSuite) TestNewResponseCarriesResult() {
	resp, err := NewResponse(7, map[string]string{"status": "ok"})
	s.Require().NoError(err)
	s.Equal(int64(7), resp.ID)
	s.Nil(resp.Error)

	var result map[string]string
	s.Require().NoError(json.Unmarshal(resp.Result, &result))
	s.Equal("ok", result["status"])
}

func (s *ErrorsSuite) TestNewErrorResponseCarriesCode() {
	resp := NewErrorResponse(7, model.ErrGameFull)
	s.Equal(int64(7), resp.ID)
	s.Require().NotNil(resp.Error)
	s.Equal(CodeGameFull, resp.Error.Code)
}

func (s *ErrorsSuite) TestRequestZeroIDIsNotification() {
	var req Request
	s.Require().NoError(json.Unmarshal([]byte(`{"method":"setPushPositionHover"}`), &req))
	s.Zero(req.ID)
	s.Equal(MethodSetPushPositionHover, req.Method)
}
