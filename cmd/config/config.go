package config

import (
	"flag"
	"os"
)

var (
	RunAddress            string
	DatabaseURI           string
	TelegramBotToken      string
	PaymentGatewayAddress string
	JWTSecret             string
	LogLevel              string
	AdminLogin            string
	AdminPassword         string
)

func ParseFlags() {

	flag.StringVar(&RunAddress, "a", ":8080", "address to run server")
	flag.StringVar(&DatabaseURI, "d", "", "database uri")
	flag.StringVar(&TelegramBotToken, "t", "", "telegram bot token")
	flag.StringVar(&PaymentGatewayAddress, "p", "", "payment gateway address")
	flag.StringVar(&JWTSecret, "s", "trailerent-secret-key", "jwt signing secret")
	flag.StringVar(&LogLevel, "l", "info", "log level")
	flag.StringVar(&AdminLogin, "au", "", "initial admin login")
	flag.StringVar(&AdminPassword, "ap", "", "initial admin password")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		RunAddress = envRunAddr
	}
	if databaseURI := os.Getenv("DATABASE_URI"); databaseURI != "" {
		DatabaseURI = databaseURI
	}
	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		TelegramBotToken = botToken
	}
	if gatewayAddress := os.Getenv("PAYMENT_GATEWAY_ADDRESS"); gatewayAddress != "" {
		PaymentGatewayAddress = gatewayAddress
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		JWTSecret = jwtSecret
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		LogLevel = logLevel
	}
	if adminLogin := os.Getenv("ADMIN_LOGIN"); adminLogin != "" {
		AdminLogin = adminLogin
	}
	if adminPassword := os.Getenv("ADMIN_PASSWORD"); adminPassword != "" {
		AdminPassword = adminPassword
	}
}
