package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"shift-scheduler/migrations"
	"shift-scheduler/pkg/config"
	"shift-scheduler/pkg/database/postgresql"
	"shift-scheduler/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runRoles := flag.Bool("roles", false, "Создать роли по умолчанию и администратора")
	runCatalog := flag.Bool("catalog", false, "Наполнить каталог техники, зависимости и оргструктуру")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -roles -catalog)")
	adminLogin := flag.String("admin-login", "admin", "Логин администратора")
	adminPassword := flag.String("admin-password", "Password123!", "Пароль администратора")

	flag.Parse()

	if !*runRoles && !*runCatalog && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -roles")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	if err := migrations.Up(dbPool, zap.NewNop()); err != nil {
		log.Fatalf("❌ Ошибка миграций: %v", err)
	}
	log.Println("======================================================")

	if *runAll || *runRoles {
		seeders.SeedRolesAndAdmin(dbPool, *adminLogin, *adminPassword)
		log.Println("======================================================")
	}
	if *runAll || *runCatalog {
		seeders.SeedCatalog(dbPool)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
