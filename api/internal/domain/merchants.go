package domain

type Merchants struct {
	Model
	ID           uint   `gorm:"primaryKey"`
	MerchantName string `gorm:"unique:size:32;not null"`
	MerchantID   string `gorm:"unique:size:36;not null"`
	ApiKey       string `gorm:"size:64;not null"`

	// receiving wallets. empty means the merchant has not configured one and
	// deposit addresses fall back to clearly flagged demo addresses
	StacksAddress  string `gorm:"type:text"`
	BitcoinAddress string `gorm:"type:text"`
}

// address the deposit settles to for the given method
func (m *Merchants) ReceivingAddress(method Method) string {
	if method == METHOD_BTC {
		return m.BitcoinAddress
	}
	return m.StacksAddress
}
