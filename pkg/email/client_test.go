package email

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendCourseCompleted(t *testing.T) {
	c := NewClient("smtp.example.com", "587", "", "", "noreply@example.com", "https://app.example.com/")

	var gotAddr string
	var gotTo []string
	var gotMsg string
	c.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, c.SendCourseCompleted("ada@example.com", "Ada", "Go Basics", "c1"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: You completed Go Basics")
	assert.Contains(t, gotMsg, "https://app.example.com/courses/c1")
	assert.Contains(t, gotMsg, "Hi Ada")
}
