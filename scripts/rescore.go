// 手动触发整场考试重新判分脚本
//
// 答案键修正或变体删除后，已保存的成绩不会自动重算。
// 此脚本对指定考试的全部成绩按已存答案重新判分。
//
// 用法: go run scripts/rescore.go <schoolID> <examID>

package main

import (
	"log"
	"os"
	"strconv"

	"schoolexam_backend/internal/config"
	"schoolexam_backend/internal/repository"
	"schoolexam_backend/internal/service"
	"schoolexam_backend/pkg/database"
	"schoolexam_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatalf("用法: go run scripts/rescore.go <schoolID> <examID>")
	}
	schoolID, err := strconv.ParseUint(os.Args[1], 10, 32)
	if err != nil {
		log.Fatalf("无效的 schoolID: %v", err)
	}
	examID, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		log.Fatalf("无效的 examID: %v", err)
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	examRepo := repository.NewExamRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	resultRepo := repository.NewResultRepository(db)
	scoring := service.NewScoringService(examRepo, variantRepo, resultRepo)

	results, err := resultRepo.ListByExam(uint(schoolID), uint(examID))
	if err != nil {
		log.Fatalf("读取成绩失败: %v", err)
	}

	rescored, failed := 0, 0
	for _, r := range results {
		_, err := scoring.ScoreSubmission(uint(schoolID), uint(examID), r.StudentID, r.Answers.Data(), r.Source, r.VariantID, r.Notes)
		if err != nil {
			failed++
			log.Printf("学生 %d 重判失败: %v", r.StudentID, err)
			continue
		}
		rescored++
	}

	log.Printf("重新判分完成: 成功 %d, 失败 %d", rescored, failed)
}
