package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deliveredOrderJSON = `{
	"id": "ord-9",
	"orderStatus": "delivered",
	"createdAt": "2024-03-01T09:00:00Z",
	"deliveredAt": "2024-03-05T15:30:00Z",
	"items": [{"product": {"id": "p-1", "name": "Canvas Tote"}, "quantity": 1, "price": 499}]
}`

const shippedOrderJSON = `{
	"id": "ord-7",
	"orderStatus": "shipped",
	"createdAt": "2024-03-01T09:00:00Z",
	"items": []
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// executeCommand runs stagectl with args and returns captured stdout.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func decodeView(t *testing.T, out string) domain.TrackingView {
	t.Helper()
	var view domain.TrackingView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	return view
}

func TestDerive_Delivered(t *testing.T) {
	orderPath := writeFile(t, "order.json", deliveredOrderJSON)

	out, err := executeCommand(t, "", "derive", "--order", orderPath, "--now", "2024-03-10T12:00:00Z")
	require.NoError(t, err)

	view := decodeView(t, out)
	assert.Equal(t, "ord-9", view.OrderID)
	require.Len(t, view.Stages, 5)
	assert.Equal(t, "Item Delivered", view.Stages[4].Label)
	assert.Equal(t, "05 Mar 2024", view.Stages[4].Timestamp)
	assert.Equal(t, domain.Eligibility{CanExchangeOrReturn: true, CanReview: true}, view.Eligibility)
	require.NotNil(t, view.FirstProduct)
	assert.Equal(t, "Canvas Tote", view.FirstProduct.Product.Name)
}

func TestDerive_WindowFlagAndEnv(t *testing.T) {
	orderPath := writeFile(t, "order.json", deliveredOrderJSON)

	out, err := executeCommand(t, "", "derive", "--order", orderPath, "--now", "2024-03-10T12:00:00Z", "--window-days", "3")
	require.NoError(t, err)
	assert.False(t, decodeView(t, out).Eligibility.CanExchangeOrReturn)

	t.Setenv("EXCHANGE_RETURN_WINDOW_DAYS", "2")
	out, err = executeCommand(t, "", "derive", "--order", orderPath, "--now", "2024-03-10T12:00:00Z")
	require.NoError(t, err)
	assert.False(t, decodeView(t, out).Eligibility.CanExchangeOrReturn)
}

func TestDerive_FeedFromStdinOrder(t *testing.T) {
	feedPath := writeFile(t, "feed.json", `{"trackingHistory":[
		{"status":"Out for Delivery","location":"Pune","timestamp":"2024-03-04T07:45:00Z"}
	]}`)

	out, err := executeCommand(t, shippedOrderJSON, "derive", "--order", "-", "--feed", feedPath)
	require.NoError(t, err)

	view := decodeView(t, out)
	assert.Equal(t, domain.StageStatusCompleted, view.Stages[3].Status)
	assert.Equal(t, "2024-03-04T07:45:00Z", view.Stages[3].Timestamp)
	assert.Equal(t, "Estimated delivery date pending", view.Stages[4].Message)
	assert.Nil(t, view.FirstProduct)
}

func TestDerive_Errors(t *testing.T) {
	orderPath := writeFile(t, "order.json", deliveredOrderJSON)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing order flag", args: []string{"derive"}},
		{name: "missing order file", args: []string{"derive", "--order", filepath.Join(t.TempDir(), "nope.json")}},
		{name: "bad now", args: []string{"derive", "--order", orderPath, "--now", "yesterday"}},
		{name: "bad timezone", args: []string{"derive", "--order", orderPath, "--timezone", "Mars/Olympus"}},
		{name: "negative window", args: []string{"derive", "--order", orderPath, "--window-days", "-1"}},
		{name: "zero window", args: []string{"derive", "--order", orderPath, "--window-days", "0"}},
		{name: "order and feed both on stdin", args: []string{"derive", "--order", "-", "--feed", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestDerive_FeedFromStdin(t *testing.T) {
	orderPath := writeFile(t, "order.json", shippedOrderJSON)
	feed := `{"trackingHistory":[{"status":"Order Packed","timestamp":"2024-03-02T10:00:00Z"}]}`

	out, err := executeCommand(t, feed, "derive", "--order", orderPath, "--feed", "-")
	require.NoError(t, err)

	view := decodeView(t, out)
	assert.Equal(t, "2024-03-02T10:00:00Z", view.Stages[1].Timestamp)
}
