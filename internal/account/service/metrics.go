package service

import (
	"github.com/AlibekovAA/notes/internal/observability/metrics"
)

func incrementAccountsRegistered() {
	metrics.AccountsRegistered.Inc()
}

func recordLogin(outcome string) {
	metrics.AccountLoginsTotal.WithLabelValues(outcome).Inc()
}

func incrementSessionTokensIssued() {
	metrics.SessionTokensIssued.Inc()
}

func incrementSessionTokensRevoked() {
	metrics.SessionTokensRevoked.Inc()
}
