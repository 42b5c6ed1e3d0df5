package shellerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_UserMessage(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		expectMsg     string
		expectCommand bool
	}{
		{
			name:          "command error",
			err:           Command("No such thing.", "lookup failed"),
			expectMsg:     "No such thing.",
			expectCommand: true,
		},
		{
			name:          "formatted",
			err:           Commandf("Unknown command %q.", "x"),
			expectMsg:     `Unknown command "x".`,
			expectCommand: true,
		},
		{
			name:          "wrapped in another error",
			err:           fmt.Errorf("run: %w", Command("Bad.", "")),
			expectMsg:     "Bad.",
			expectCommand: true,
		},
		{
			name:      "other error",
			err:       errors.New("disk on fire"),
			expectMsg: "disk on fire",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectMsg, UserMessage(tc.err))
			assert.Equal(t, tc.expectCommand, IsCommand(tc.err))
		})
	}
}

func Test_Command_technicalMessage(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("lookup failed", Command("No such thing.", "lookup failed").Error())
	assert.Equal("command rejected: Bad.", Command("Bad.", "").Error())
}
