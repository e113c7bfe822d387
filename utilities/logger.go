package utilities

import (
	"log"
	"os"
	"strings"
	"time"
)

var (
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger
	DebugLogger *log.Logger

	debugEnabled bool
)

func init() {
	// Garante loggers utilizáveis mesmo antes de InitLogger (testes incluídos)
	InitLogger()
}

// InitLogger inicializa os loggers
func InitLogger() {
	// Configuração do formato de data/hora
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	// Criar loggers com diferentes prefixos
	InfoLogger = log.New(os.Stdout, "\033[32m[INFO]\033[0m ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	WarnLogger = log.New(os.Stdout, "\033[33m[WARN]\033[0m ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "\033[31m[ERROR]\033[0m ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLogger = log.New(os.Stdout, "\033[36m[DEBUG]\033[0m ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)

	// Logs de debug só aparecem com LOG_LEVEL=debug
	debugEnabled = strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug")
}

// LogRequest registra informações sobre a requisição HTTP
func LogRequest(method, path, remoteAddr string, status int, duration time.Duration) {
	InfoLogger.Printf("%s %s %s %d %v", method, path, remoteAddr, status, duration)
}

// LogError registra erros com contexto
func LogError(err error, context string) {
	ErrorLogger.Printf("%s: %v", context, err)
}

// LogWarn registra avisos
func LogWarn(format string, v ...interface{}) {
	WarnLogger.Printf(format, v...)
}

// LogDebug registra informações de debug
func LogDebug(format string, v ...interface{}) {
	if !debugEnabled {
		return
	}
	DebugLogger.Printf(format, v...)
}

// LogInfo registra informações gerais
func LogInfo(format string, v ...interface{}) {
	InfoLogger.Printf(format, v...)
}
