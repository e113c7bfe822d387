package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"assistente-tarefas/handlers"
	"assistente-tarefas/utilities"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// LoadRoutes sobe a superfície HTTP de observação: estado do bot e leitura
// das tarefas pendentes
func LoadRoutes(dispatcher *handlers.Dispatcher) {
	r := mux.NewRouter()

	// Aplicar o middleware de logging global em todas as rotas
	r.Use(loggingMiddleware)

	r.HandleFunc("/health", healthHandler(dispatcher)).Methods("GET")
	r.HandleFunc("/tasks", tasksHandler(dispatcher)).Methods("GET")

	// Configuração do CORS
	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "OPTIONS"})

	allowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if allowedOriginsEnv == "" {
		allowedOrigins = []string{"*"}
		utilities.LogInfo("CORS_ALLOWED_ORIGINS não definida, permitindo todas as origens ('*'). Defina para maior segurança em produção.")
	} else {
		allowedOrigins = strings.Split(allowedOriginsEnv, ",")
	}
	origins := gorillahandlers.AllowedOrigins(allowedOrigins)

	handler := gorillahandlers.CORS(headers, methods, origins)(r)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	utilities.LogInfo("Servidor HTTP iniciado na porta %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func healthHandler(dispatcher *handlers.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{
			"status": "ok",
			"sheets": dispatcher.StoreAvailable(),
			"gemini": dispatcher.OracleAvailable(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

func tasksHandler(dispatcher *handlers.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := dispatcher.PendingTasks(r.Context())
		if err != nil {
			utilities.LogError(err, "Erro ao listar tarefas pela rota HTTP")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"error": "armazenamento de tarefas indisponível"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tasks)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		utilities.LogRequest(r.Method, r.URL.Path, r.RemoteAddr, recorder.status, time.Since(start))
	})
}
