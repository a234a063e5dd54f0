package xlog

import "time"

// timeNow 可替换的时钟，测试时可注入固定时间
var timeNow = time.Now
