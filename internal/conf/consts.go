package conf

// Model backend identifiers for model.type
const (
	ModelTypeLinear = "linear"
	ModelTypeTFLite = "tflite"
)

// SMTP encryption modes for notification.smtp.encryption
const (
	EncryptionAuto        = "auto"
	EncryptionNone        = "none"
	EncryptionExplicitTLS = "explicittls"
	EncryptionImplicitTLS = "implicittls"
)

// EnvPrefix is the prefix of every environment variable the advisor reads.
const EnvPrefix = "COLDCHAIN"
