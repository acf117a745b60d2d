// Package setup walks a user through creating the Notion config file.
package setup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/dutyroster/internal/config"
)

// ErrCancelled is returned when the user declines to overwrite an
// existing config.
var ErrCancelled = errors.New("setup cancelled")

const rule = "=================================================="

// Wizard holds the streams and hooks used by the interactive setup.
type Wizard struct {
	In         io.Reader
	Out        io.Writer
	ConfigPath string // file to write; its extension picks the format
	Executable string // shown in the crontab examples

	// TestRun performs a real update with the new settings. It is only
	// called when the user accepts the test run.
	TestRun func(ctx context.Context, cfg config.Config) error

	scanner *bufio.Scanner
}

// Run executes the full guide: config file, optional test run and
// crontab guidance.
func (w *Wizard) Run(ctx context.Context) error {
	w.scanner = bufio.NewScanner(w.In)

	w.println("🏥 診療カレンダー Notion自動更新セットアップ")
	w.println(rule)

	cfg, err := w.configure(ctx)
	if err != nil {
		w.println()
		w.println("❌ セットアップに失敗しました")
		w.println("手動で設定ファイルを作成してください")
		return err
	}

	w.println()
	w.println("🎉 セットアップが完了しました！")
	w.cronGuide(cfg)

	w.println()
	w.println("📚 次のステップ:")
	w.println("1. cronジョブを設定して週一回の自動実行を有効にする")
	w.println("   (または `dutyroster daemon` を常駐させる)")
	w.printf("2. ログファイル %s で動作を確認する\n", config.DefaultLogFile)
	w.println("3. 必要に応じて実行時間を調整する")
	return nil
}

func (w *Wizard) configure(ctx context.Context) (config.Config, error) {
	var cfg config.Config

	w.println("🔧 Notion自動更新のセットアップを開始します")
	w.println(rule)

	if _, err := os.Stat(w.ConfigPath); err == nil {
		w.println("⚠️  設定ファイルが既に存在します")
		if !w.confirm("上書きしますか？ (y/N): ", false) {
			w.println("セットアップをキャンセルしました")
			return cfg, ErrCancelled
		}
	}

	w.println()
	w.println("📋 以下の手順でNotion APIの設定を行ってください：")
	w.println()
	w.println("1. Notionインテグレーションの作成")
	w.println("   - https://www.notion.so/my-integrations にアクセス")
	w.println("   - 「新しいインテグレーション」をクリック")
	w.println("   - 名前を入力（例：診療カレンダー自動更新）")
	w.println("   - 「送信」をクリック")
	w.println("   - 「内部トークン」をコピー")
	w.println()

	token, err := w.ask("🔑 Notion内部トークンを入力してください: ")
	if err != nil {
		return cfg, err
	}
	if token == "" {
		return cfg, errors.New("notion token is required")
	}

	w.println()
	w.println("2. Notionページの設定")
	w.println("   - 更新したいNotionページを開く")
	w.println("   - ページのURLをコピー")
	w.println("   - URLの最後の32桁の英数字がページIDです（URLをそのまま貼り付けても構いません）")
	w.println("   - 例: https://www.notion.so/xxxx-0123456789abcdef0123456789abcdef")
	w.println("   - ページID: 0123456789abcdef0123456789abcdef")
	w.println()

	pageRef, err := w.ask("📄 NotionページIDを入力してください: ")
	if err != nil {
		return cfg, err
	}
	pageID, err := config.NormalizePageID(pageRef)
	if err != nil {
		return cfg, err
	}

	w.println()
	w.println("3. ページへのアクセス権付与")
	w.println("   - 更新対象のNotionページを開く")
	w.println("   - 右上の「共有」をクリック")
	w.println("   - 作成したインテグレーションを招待")
	w.println("   - 「編集」権限を付与")
	w.println()

	if _, err := w.ask("設定が完了したらEnterキーを押してください..."); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}

	cfg = config.Config{
		NotionToken:    token,
		PageID:         pageID,
		UpdateSchedule: config.DefaultSchedule,
		LogLevel:       config.DefaultLogLevel,
	}
	if err := config.Save(w.ConfigPath, cfg); err != nil {
		w.printf("❌ 設定ファイル作成エラー: %v\n", err)
		return cfg, err
	}

	w.println()
	w.println("✅ 設定ファイルが作成されました")
	w.printf("📁 ファイル: %s\n", w.ConfigPath)

	w.println()
	w.println("🧪 設定をテストしますか？")
	if w.TestRun != nil && w.confirm("テスト実行しますか？ (Y/n): ", true) {
		w.println()
		w.println("🔄 テスト実行中...")
		if err := w.TestRun(ctx, cfg); err != nil {
			// The config is already saved; a failed test run does not undo it.
			w.printf("❌ テスト実行に失敗しました: %v\n", err)
			w.printf("ログファイル %s を確認してください\n", config.DefaultLogFile)
		} else {
			w.println("✅ テスト実行が成功しました！")
			w.println("Notionページが更新されているか確認してください")
		}
	}

	return cfg, nil
}

func (w *Wizard) cronGuide(cfg config.Config) {
	exe := w.Executable
	if exe == "" {
		exe = "dutyroster"
	}
	dir := filepath.Dir(w.ConfigPath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	spec, err := config.CronSpec(cfg.UpdateSchedule)
	if err != nil {
		spec, _ = config.CronSpec(config.DefaultSchedule)
	}

	w.println()
	w.println("⏰ 週一回の自動実行設定")
	w.println(rule)
	w.println("以下のコマンドでcronジョブを設定できます：")
	w.println()
	w.println("1. crontabを編集:")
	w.println("   crontab -e")
	w.println()
	w.println("2. 以下の行を追加（毎週月曜日 午前3時に実行）:")
	w.printf("   %s cd %s && %s update\n", spec, dir, exe)
	w.println()
	w.println("3. または、毎週日曜日 午後11時に実行:")
	w.printf("   0 23 * * 0 cd %s && %s update\n", dir, exe)
	w.println()
	w.println("📝 cronの設定例:")
	w.println("   # 分 時 日 月 曜日 コマンド")
	w.println("   0 3 * * 1  # 毎週月曜日 3:00")
	w.println("   0 23 * * 0 # 毎週日曜日 23:00")
	w.println()
	w.println("💡 ヒント:")
	w.println("   - 曜日: 0=日曜日, 1=月曜日, 2=火曜日, ...")
	w.println("   - 時間は24時間形式")
	w.println("   - 設定後は 'crontab -l' で確認できます")
}

// ask prints prompt and returns the next trimmed input line. EOF before
// any input is returned as io.EOF.
func (w *Wizard) ask(prompt string) (string, error) {
	w.printf("%s", prompt)
	if !w.scanner.Scan() {
		if err := w.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(w.scanner.Text()), nil
}

// confirm asks a yes/no question. An empty answer (or EOF) takes def.
func (w *Wizard) confirm(prompt string, def bool) bool {
	answer, err := w.ask(prompt)
	if err != nil || answer == "" {
		return def
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func (w *Wizard) println(a ...any) {
	fmt.Fprintln(w.Out, a...)
}

func (w *Wizard) printf(format string, a ...any) {
	fmt.Fprintf(w.Out, format, a...)
}
