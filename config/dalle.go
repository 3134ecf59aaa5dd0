package config

import (
	"fmt"
	"os"
)

type DaLLeConfig struct {
	ApiUrl         string
	ApiKey         string
	Model          string
	BackgroundSize string
	CharacterSize  string
	StyleSuffix    string
}

func GetDaLLeConfig() (*DaLLeConfig, error) {
	apiUrl := os.Getenv("DALLE_API_URL")
	if apiUrl == "" {
		return nil, fmt.Errorf("DALLE_API_URL must be set")
	}
	apiKey := os.Getenv("DALLE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("DALLE_API_KEY must be set")
	}
	model := os.Getenv("DALLE_MODEL")
	if model == "" {
		return nil, fmt.Errorf("DALLE_MODEL must be set")
	}

	return &DaLLeConfig{
		ApiUrl:         apiUrl,
		ApiKey:         apiKey,
		Model:          model,
		BackgroundSize: envString("DALLE_BACKGROUND_SIZE", "1792x1024"),
		CharacterSize:  envString("DALLE_CHARACTER_SIZE", "1024x1024"),
		StyleSuffix:    envString("DALLE_STYLE_SUFFIX", "cartoon style, anime style, simple, clean lines"),
	}, nil
}
