package core

// Snapshot is every record of every kind as read from storage at one point in time.
type Snapshot struct {
	Accounts          []Account
	PaymentMethods    []PaymentMethod
	Transactions      []Transaction
	RecurringPayments []RecurringPayment
	SavingsGoals      []SavingsGoal
}

// PaymentMethodsByID indexes the snapshot's payment methods.
func (s Snapshot) PaymentMethodsByID() map[string]PaymentMethod {
	byID := make(map[string]PaymentMethod, len(s.PaymentMethods))
	for _, pm := range s.PaymentMethods {
		byID[pm.ID] = pm
	}
	return byID
}
