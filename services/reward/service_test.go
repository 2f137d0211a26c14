package reward

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/middleware"
	"smallbiznis-promotion/pkg/taskname"
	"smallbiznis-promotion/services/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &Reward{})
	return NewService(ServiceParams{Repository: NewRepository(db), Node: testutil.NewNode(t)})
}

func TestService_CreateReward(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	r, err := svc.CreateReward(ctx, CreateRewardInput{Type: "coin", Name: "100 coins", Description: "A pile of coins"})
	require.NoError(t, err)
	require.Equal(t, taskname.GameRewardProcess, r.GrantCommand)

	got, err := svc.GetReward(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, "100 coins", got.Name)

	_, err = svc.CreateReward(ctx, CreateRewardInput{Type: "coin", Name: "100 coins", Description: "again"})
	require.True(t, errutil.Is(err, errutil.StatusConflict))
	base, _ := errutil.As(err)
	require.Equal(t, MsgDuplicate, base.Message)

	other, err := svc.CreateReward(ctx, CreateRewardInput{
		Type: "item", Name: "100 coins", Description: "same name, other type", GrantCommand: "game.item.grant",
	})
	require.NoError(t, err)
	require.Equal(t, "game.item.grant", other.GrantCommand)
}

func TestService_CreateRewardRequiresFields(t *testing.T) {
	svc := newTestService(t)

	for _, in := range []CreateRewardInput{
		{Name: "n", Description: "d"},
		{Type: "t", Description: "d"},
		{Type: "t", Name: "n"},
	} {
		_, err := svc.CreateReward(context.Background(), in)
		require.True(t, errutil.Is(err, errutil.StatusValidationFailed))
	}
}

func TestService_GetRewardNotFound(t *testing.T) {
	_, err := newTestService(t).GetReward(context.Background(), "missing")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))
}

func TestHandler_CreateReward(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Error())
	NewHandler(newTestService(t)).RegisterRoutes(r.Group("/v1"))

	body := `{"type":"coin","name":"gold","description":"shiny"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rewards", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rewards", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), MsgDuplicate)
}
