package mysql

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/jpashop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 注册SQL计数回调（订单读取统计每种加载策略发出的SQL条数）
func NewDB(cfg *config.Config, logger *log.Logger) (*gorm.DB, error) {
	db, err := Open(mysql.Open(cfg.Database.DSN()), gormLogLevel(cfg.Server.Mode))
	if err != nil {
		return nil, err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	logger.WithField("component", "mysql").
		WithField("dbname", cfg.Database.DBName).
		Info("数据库连接成功")

	// 自动迁移表结构（开发环境）
	// 生产环境应使用版本化的迁移脚本
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

// Open 用指定方言打开GORM连接并注册SQL计数回调
// 测试中传入sqlite方言，生产环境传入mysql方言
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: time.Now,
		// 把驱动的唯一索引冲突翻译成gorm.ErrDuplicatedKey
		TranslateError: true,
		// 订单表不建外键约束,引用缺失由读取方检测并报错
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if err := RegisterQueryCounter(db); err != nil {
		return nil, fmt.Errorf("注册SQL计数回调失败: %w", err)
	}
	return db, nil
}

func gormLogLevel(mode string) logger.LogLevel {
	if mode == "debug" {
		return logger.Info // 开发环境打印SQL
	}
	return logger.Silent
}

// AutoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&MemberModel{},
		&ItemModel{},
		&DeliveryModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}
