package dbmysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"usernotify/internal/common"
)

func TestEventDefKinds(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []common.Kind
	}{
		{"single", "inApp", []common.Kind{common.KindInApp}},
		{"multiple", "inApp,email,push", []common.Kind{common.KindInApp, common.KindEmail, common.KindPush}},
		{"spaces trimmed", " inApp , email ", []common.Kind{common.KindInApp, common.KindEmail}},
		{"empty", "", []common.Kind{}},
		{"trailing comma", "inApp,", []common.Kind{common.KindInApp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := EventDef{SupportedKinds: tt.csv}
			assert.Equal(t, tt.want, def.Kinds())
		})
	}
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "notification_recipient_links", RecipientLink{}.TableName())
}
